package selection

import (
	"github.com/rs/zerolog"

	"auto-copy/src/messages"
)

// Reader returns the current selection as plain text.
type Reader interface {
	ReadSelection() (string, error)
}

// Sender is the outgoing side of the message router.
type Sender interface {
	Send(from, to string, m messages.Message) error
}

// Watcher turns selection-change notifications into copy requests.
type Watcher struct {
	reader Reader
	sender Sender
	logger zerolog.Logger
}

func NewWatcher(reader Reader, sender Sender, logger zerolog.Logger) *Watcher {
	return &Watcher{reader: reader, sender: sender, logger: logger}
}

// OnSelectionChange reads the selection and, when it holds text, sends one
// copy request to the clipboard process. Nothing waits for the result.
func (w *Watcher) OnSelectionChange() {
	text, err := w.reader.ReadSelection()
	if err != nil {
		w.logger.Debug().Err(err).Msg("selection: read failed")
		return
	}
	if text == "" {
		return
	}
	if err := w.sender.Send(messages.ProcessSelection, messages.ProcessClipboard, messages.CopyToClipboard{Text: text}); err != nil {
		w.logger.Debug().Err(err).Msg("selection: send dropped")
	}
}
