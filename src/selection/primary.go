package selection

import (
	"errors"

	atotto "github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("selection not readable here (needs X11/Wayland with xsel, xclip or wl-clipboard)")

// PrimaryReader reads the PRIMARY selection, the text the user last
// highlighted. Platforms without one return ErrUnsupported.
type PrimaryReader struct{}

// Supported reports whether ReadSelection can return selected text at all.
func (PrimaryReader) Supported() bool {
	usePrimary()
	return helperAvailable()
}

func (PrimaryReader) ReadSelection() (string, error) {
	usePrimary()
	if !helperAvailable() {
		return "", ErrUnsupported
	}
	return atotto.ReadAll()
}
