// Package clipwriter is the receiving half of copy-on-select: it drains the
// clipboard mailbox and turns each copy request into a clipboard write.
package clipwriter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"auto-copy/src/logutil"
	"auto-copy/src/messages"
)

var ErrHandlerExists = errors.New("handler already registered")

// Clipboard is the asynchronous write facility the writer drives.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// HandlerFunc reacts to one decoded message. It runs on the Run goroutine
// and must not block.
type HandlerFunc func(ctx context.Context, m messages.Message)

// Writer dispatches mailbox messages to the handler registered for their tag.
type Writer struct {
	clipboard Clipboard
	logger    zerolog.Logger
	inflight  sync.WaitGroup

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New creates a writer with the copy-to-clipboard handler already installed.
func New(cb Clipboard, logger zerolog.Logger) *Writer {
	w := &Writer{
		clipboard: cb,
		logger:    logger,
		handlers:  make(map[string]HandlerFunc),
	}
	_ = w.Handle(messages.TypeCopyToClipboard, w.handleCopy)
	return w
}

// Handle installs h for tag. A tag has at most one handler.
func (w *Writer) Handle(tag string, h HandlerFunc) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.handlers[tag]; ok {
		return fmt.Errorf("%s: %w", tag, ErrHandlerExists)
	}
	w.handlers[tag] = h
	return nil
}

// Run consumes inbox until it closes or ctx is done.
func (w *Writer) Run(ctx context.Context, inbox <-chan messages.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-inbox:
			if !ok {
				return
			}
			w.Dispatch(ctx, env.Payload)
		}
	}
}

// Dispatch decodes payload and hands it to the matching handler.
// Undecodable payloads and unknown tags are dropped silently.
func (w *Writer) Dispatch(ctx context.Context, payload []byte) {
	m, err := messages.Decode(payload)
	if err != nil {
		return
	}
	w.mu.RLock()
	h, ok := w.handlers[m.Type()]
	w.mu.RUnlock()
	if !ok {
		return
	}
	h(ctx, m)
}

// Wait blocks until every detached write has finished.
func (w *Writer) Wait() { w.inflight.Wait() }

func (w *Writer) handleCopy(ctx context.Context, m messages.Message) {
	req, ok := m.(messages.CopyToClipboard)
	if !ok {
		return
	}
	// The write outlives shutdown of the loop; nothing cancels it.
	writeCtx := context.WithoutCancel(ctx)
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		if err := w.clipboard.WriteText(writeCtx, req.Text); err != nil {
			w.logger.Error().Err(err).Msgf("Error copying text to clipboard: %v", err)
			return
		}
		w.logger.Info().Int("len", len(req.Text)).Msgf("Text copied to clipboard: %s", logutil.Sanitize(req.Text))
	}()
}
