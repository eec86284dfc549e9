//go:build freebsd || linux || netbsd || openbsd || solaris || dragonfly

package selection

import (
	"sync"

	atotto "github.com/atotto/clipboard"
)

var primaryOnce sync.Once

func usePrimary() {
	primaryOnce.Do(func() { atotto.Primary = true })
}

func helperAvailable() bool { return !atotto.Unsupported }
