package hook

import (
	"context"
	"sync"

	gohook "github.com/robotn/gohook"
	"github.com/rs/zerolog/log"
)

// Listen starts the global input hook and calls notify for every event the
// detector classifies as a selection change. It returns at once; the hook is
// torn down when ctx is done.
func Listen(ctx context.Context, minDragPixels int, notify func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("PANIC in selection hook goroutine")
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Error().Msg("gohook.Start() returned nil channel")
			return
		}
		log.Debug().Msg("selection hook started")

		var stopOnce sync.Once
		stop := func() { stopOnce.Do(gohook.End) }
		go func() {
			<-ctx.Done()
			stop()
		}()
		defer stop()

		d := NewDetector(minDragPixels)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Debug().Msg("selection hook event channel closed")
					return
				}
				if d.Observe(ev) && notify != nil {
					notify()
				}
			}
		}
	}()
}
