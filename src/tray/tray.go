package tray

import (
	_ "embed"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"
)

//go:embed icon.png
var iconPNG []byte

type Config struct {
	Title string
	// IsPaused reports the live state, which the control port can also change.
	IsPaused func() bool
	OnToggle func(paused bool)
	OnExit   func()
}

// refreshInterval is how often the menu catches up with pauses made over the control port.
const refreshInterval = time.Second

// checkbox is the part of *systray.MenuItem the toggle needs.
type checkbox interface {
	Checked() bool
	Check()
	Uncheck()
}

// Tray is the status icon with the copy toggle and Quit.
type Tray struct {
	cfg        Config
	setTooltip func(string)
}

func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "Auto Copy"
	}
	return &Tray{cfg: cfg, setTooltip: systray.SetTooltip}
}

// Run blocks until Quit is called. On macOS it must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(iconPNG)
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(Tooltip(t.cfg.Title, t.paused()))

	toggle := systray.AddMenuItemCheckbox("Copy on select", "Copy highlighted text to the clipboard", !t.paused())
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Stop copying and exit")

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.show(toggle, t.paused())
			case <-toggle.ClickedCh:
				t.click(toggle)
			case <-quit.ClickedCh:
				log.Info().Msg("tray: quit requested")
				systray.Quit()
				return
			}
		}
	}()
}

// click flips the live state, not the check mark, which may be stale.
func (t *Tray) click(item checkbox) {
	paused := !t.paused()
	if t.cfg.OnToggle != nil {
		t.cfg.OnToggle(paused)
	}
	t.show(item, paused)
}

// show makes the check mark and tooltip match paused. It reports whether anything changed.
func (t *Tray) show(item checkbox, paused bool) bool {
	if item.Checked() == !paused {
		return false
	}
	if paused {
		item.Uncheck()
	} else {
		item.Check()
	}
	t.setTooltip(Tooltip(t.cfg.Title, paused))
	return true
}

func (t *Tray) paused() bool {
	return t.cfg.IsPaused != nil && t.cfg.IsPaused()
}

func (t *Tray) onExit() {
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// Tooltip is the hover text for the current state.
func Tooltip(title string, paused bool) string {
	if paused {
		return title + " - paused"
	}
	return title + " - copying selections"
}
