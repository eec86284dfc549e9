//go:build !(freebsd || linux || netbsd || openbsd || solaris || dragonfly)

package selection

// No PRIMARY selection here. Reading the clipboard instead would copy the
// clipboard onto itself, so the reader reports ErrUnsupported.
func usePrimary() {}

func helperAvailable() bool { return false }
