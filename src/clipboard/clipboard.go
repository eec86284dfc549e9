package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned by writes when the clipboard could not be initialized.
var ErrUnavailable = errors.New("clipboard unavailable")

var (
	initOnce sync.Once
	initErr  error
	writeMu  sync.Mutex

	// writeFn and initFn are swapped in tests that have no display.
	writeFn  = systemWrite
	initFn   = clipboard.Init
	libWrite = clipboard.Write
)

// Init initializes the system clipboard once; later calls return the first result.
func Init() error {
	initOnce.Do(func() {
		if err := initFn(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return initErr
}

// Write performs a mutex-guarded clipboard write so parallel writes don't interleave.
func Write(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	return writeFn(text)
}

// systemWrite hands text to the clipboard. The library reports a failed
// write only by returning no change channel.
func systemWrite(text string) error {
	if changed := libWrite(clipboard.FmtText, []byte(text)); changed == nil {
		return fmt.Errorf("%w: write rejected", ErrUnavailable)
	}
	return nil
}

// System is the system clipboard as seen by the clipboard writer.
type System struct{}

// WriteText writes text unless ctx is already done.
func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Write(text)
}
