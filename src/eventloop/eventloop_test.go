package eventloop

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-copy/src/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type stubReader struct {
	mu   sync.Mutex
	text string
}

func (r *stubReader) set(text string) {
	r.mu.Lock()
	r.text = text
	r.mu.Unlock()
}

func (r *stubReader) ReadSelection() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, nil
}

type recordingClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (c *recordingClipboard) WriteText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return c.err
}

func (c *recordingClipboard) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

type harness struct {
	loop   *Loop
	reader *stubReader
	cb     *recordingClipboard
	logs   *syncBuffer
	notify func()
	cancel context.CancelFunc
	done   chan error

	stopOnce sync.Once
	runErr   error
}

func start(t *testing.T) *harness {
	t.Helper()
	h := &harness{reader: &stubReader{}, cb: &recordingClipboard{}, logs: &syncBuffer{}}
	logger := zerolog.New(h.logs)
	subscribed := make(chan struct{})

	h.loop = New(&config.Config{MinDragPixels: 3}, Deps{
		Reader:    h.reader,
		Clipboard: h.cb,
		Logger:    &logger,
		Subscribe: func(ctx context.Context, notify func()) {
			h.notify = notify
			close(subscribed)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan error, 1)
	go func() { h.done <- h.loop.Run(ctx) }()

	select {
	case <-subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never subscribed")
	}
	t.Cleanup(func() { _ = h.stop() })
	return h
}

// stop cancels the loop and waits for Run, including in-flight writes.
func (h *harness) stop() error {
	h.stopOnce.Do(func() {
		h.cancel()
		h.runErr = <-h.done
	})
	return h.runErr
}

func TestSelectionIsCopied(t *testing.T) {
	h := start(t)

	h.reader.set("hello world")
	h.notify()

	require.Eventually(t, func() bool { return len(h.cb.got()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hello world"}, h.cb.got())
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(h.logs.String()), []byte("Text copied to clipboard: hello world"))
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEmptySelectionIsNotCopied(t *testing.T) {
	h := start(t)

	h.reader.set("")
	h.notify()
	// A later non-empty selection proves the empty one was processed first.
	h.reader.set("after")
	h.notify()

	require.Eventually(t, func() bool { return len(h.cb.got()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	_ = h.stop()
	assert.Equal(t, []string{"after"}, h.cb.got())
}

func TestWriteFailureDoesNotStopLoop(t *testing.T) {
	h := start(t)
	h.cb.mu.Lock()
	h.cb.err = errors.New("NotAllowedError")
	h.cb.mu.Unlock()

	h.reader.set("one")
	h.notify()
	require.Eventually(t, func() bool { return len(h.cb.got()) == 1 }, 2*time.Second, 5*time.Millisecond)

	h.reader.set("two")
	h.notify()
	require.Eventually(t, func() bool { return len(h.cb.got()) == 2 }, 2*time.Second, 5*time.Millisecond)

	_ = h.stop()
	assert.Contains(t, h.logs.String(), "NotAllowedError")
}

func TestPausedDropsNotifications(t *testing.T) {
	h := start(t)

	h.loop.SetPaused(true)
	assert.True(t, h.loop.Paused())
	h.reader.set("ignored")
	h.notify()

	h.loop.SetPaused(false)
	h.reader.set("kept")
	h.notify()

	require.Eventually(t, func() bool { return len(h.cb.got()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	_ = h.stop()
	assert.Equal(t, []string{"kept"}, h.cb.got())
}

func TestRunReturnsOnCancel(t *testing.T) {
	h := start(t)
	stopped := make(chan error, 1)
	go func() { stopped <- h.stop() }()
	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
