package hook

import (
	gohook "github.com/robotn/gohook"
)

// DefaultMinDragPixels is how far the pointer must travel while a button is
// held before the release counts as a drag selection.
const DefaultMinDragPixels = 3

// Virtual keycodes reported by gohook (libuiohook VC_* values).
// They are the same on every platform, unlike Rawcode.
const (
	vcShiftL   = 0x002A
	vcShiftR   = 0x0036
	vcCtrlL    = 0x001D
	vcCtrlR    = 0x0E1D
	vcA        = 0x001E
	vcHome     = 0x0E47
	vcEnd      = 0x0E4F
	vcPageUp   = 0x0E49
	vcPageDown = 0x0E51
	vcUp       = 0xE048
	vcLeft     = 0xE04B
	vcRight    = 0xE04D
	vcDown     = 0xE050
)

// Detector decides which raw input events end a selection gesture.
// It is not safe for concurrent use; the hook goroutine owns it.
type Detector struct {
	minDrag int

	pressed        bool
	pressX, pressY int
	dragged        bool

	shift bool
	ctrl  bool
}

func NewDetector(minDragPixels int) *Detector {
	if minDragPixels <= 0 {
		minDragPixels = DefaultMinDragPixels
	}
	return &Detector{minDrag: minDragPixels}
}

// Observe feeds one event and reports whether the selection may have changed.
//
// gohook names mouse events after libuiohook's: MouseHold is the button
// press and MouseDown is the release.
func (d *Detector) Observe(ev gohook.Event) bool {
	switch ev.Kind {
	case gohook.MouseHold:
		d.pressed = true
		d.dragged = false
		d.pressX, d.pressY = int(ev.X), int(ev.Y)
	case gohook.MouseDrag:
		if d.pressed && (abs(int(ev.X)-d.pressX) >= d.minDrag || abs(int(ev.Y)-d.pressY) >= d.minDrag) {
			d.dragged = true
		}
	case gohook.MouseDown:
		fire := d.dragged || ev.Clicks >= 2
		d.pressed = false
		d.dragged = false
		return fire
	case gohook.KeyHold:
		switch ev.Keycode {
		case vcShiftL, vcShiftR:
			d.shift = true
		case vcCtrlL, vcCtrlR:
			d.ctrl = true
		}
	case gohook.KeyUp:
		switch ev.Keycode {
		case vcShiftL, vcShiftR:
			d.shift = false
		case vcCtrlL, vcCtrlR:
			d.ctrl = false
		case vcHome, vcEnd, vcPageUp, vcPageDown, vcUp, vcLeft, vcRight, vcDown:
			return d.shift
		case vcA:
			return d.ctrl
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
