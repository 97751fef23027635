package sketch

import (
	"fmt"

	"MySketchBoard/internal/state"
)

// Touch is one touch point of a touch event.
type Touch struct {
	PageX float64
	PageY float64
}

// Event is a pointer or touch event in page coordinates.
type Event struct {
	Type    state.EventType
	PageX   float64
	PageY   float64
	Touches []Touch
}

// locate turns a page event into a canvas-local point. Touch events use the
// first touch; a touchend or touchcancel without touches reuses the last
// known pointer position.
func (w *Widget) locate(e Event) (state.Point, error) {
	x, y := e.PageX, e.PageY
	if e.Type.IsTouch() {
		switch {
		case len(e.Touches) > 0:
			x, y = e.Touches[0].PageX, e.Touches[0].PageY
		case e.Type == state.EventTouchEnd || e.Type == state.EventTouchCancel:
			if w.hasLast {
				x, y = w.lastX, w.lastY
			}
		default:
			return state.Point{}, fmt.Errorf("%w: %s without touch points", ErrMalformedEvent, e.Type)
		}
	}
	w.lastX, w.lastY, w.hasLast = x, y, true

	ox, oy := w.canvas.Offset()
	return state.Point{X: x - ox, Y: y - oy, Event: e.Type}, nil
}
