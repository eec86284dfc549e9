package eventloop

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"auto-copy/src/clipboard"
	"auto-copy/src/clipwriter"
	"auto-copy/src/config"
	"auto-copy/src/hook"
	"auto-copy/src/messages"
	"auto-copy/src/router"
	"auto-copy/src/selection"
)

// SubscribeFunc registers notify to be called on every selection change.
// It is called once per Run and must not block.
type SubscribeFunc func(ctx context.Context, notify func())

// Deps are the host facilities the loop drives. Zero fields get the system ones.
type Deps struct {
	Reader    selection.Reader
	Clipboard clipwriter.Clipboard
	Subscribe SubscribeFunc
	Logger    *zerolog.Logger
}

// Loop is the single-threaded coordinator between the selection watcher
// and the clipboard writer.
type Loop struct {
	router    *router.Router
	watcher   *selection.Watcher
	writer    *clipwriter.Writer
	subscribe SubscribeFunc
	logger    zerolog.Logger

	notifyCh chan struct{}
	paused   atomic.Bool
}

// New creates a new event loop. A nil cfg means defaults.
func New(cfg *config.Config, deps Deps) *Loop {
	minDrag := hook.DefaultMinDragPixels
	if cfg != nil && cfg.MinDragPixels > 0 {
		minDrag = cfg.MinDragPixels
	}

	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	if deps.Reader == nil {
		deps.Reader = selection.PrimaryReader{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.System{}
	}
	if deps.Subscribe == nil {
		deps.Subscribe = func(ctx context.Context, notify func()) {
			hook.Listen(ctx, minDrag, notify)
		}
	}

	r := router.New()
	return &Loop{
		router:    r,
		watcher:   selection.NewWatcher(deps.Reader, r, logger),
		writer:    clipwriter.New(deps.Clipboard, logger),
		subscribe: deps.Subscribe,
		logger:    logger,
		notifyCh:  make(chan struct{}, 16),
	}
}

// SetPaused stops or resumes copying. Notifications arriving while paused are dropped.
func (l *Loop) SetPaused(p bool) {
	l.paused.Store(p)
	l.logger.Info().Bool("paused", p).Msg("copy on select toggled")
}

func (l *Loop) Paused() bool { return l.paused.Load() }

// notify is handed to the notification source; it may run on any goroutine.
func (l *Loop) notify() {
	if l.paused.Load() {
		return
	}
	select {
	case l.notifyCh <- struct{}{}:
	default:
		l.logger.Debug().Msg("selection notification dropped, loop busy")
	}
}

// Run wires the watcher to the writer and processes selection changes.
// It blocks until ctx is cancelled, then waits for in-flight writes.
func (l *Loop) Run(ctx context.Context) error {
	inbox, err := l.router.Register(messages.ProcessClipboard)
	if err != nil {
		return err
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		l.writer.Run(ctx, inbox)
	}()
	defer func() {
		l.router.Shutdown()
		<-writerDone
		l.writer.Wait()
	}()

	l.subscribe(ctx, l.notify)
	l.logger.Info().Msg("watching selection")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.notifyCh:
			l.watcher.OnSelectionChange()
		}
	}
}
