package state

// EventType is the DOM event name a Point was recorded from.
type EventType string

const (
	EventClick       EventType = "click"
	EventMouseDown   EventType = "mousedown"
	EventMouseUp     EventType = "mouseup"
	EventMouseMove   EventType = "mousemove"
	EventMouseLeave  EventType = "mouseleave"
	EventMouseOut    EventType = "mouseout"
	EventTouchStart  EventType = "touchstart"
	EventTouchMove   EventType = "touchmove"
	EventTouchEnd    EventType = "touchend"
	EventTouchCancel EventType = "touchcancel"
)

// EventTypes lists every event a canvas listens to.
var EventTypes = []EventType{
	EventClick, EventMouseDown, EventMouseUp, EventMouseMove, EventMouseLeave,
	EventMouseOut, EventTouchStart, EventTouchMove, EventTouchEnd, EventTouchCancel,
}

// IsTouch reports whether the event comes from a touch surface.
func (t EventType) IsTouch() bool {
	switch t {
	case EventTouchStart, EventTouchMove, EventTouchEnd, EventTouchCancel:
		return true
	}
	return false
}

// Point is a canvas-local coordinate.
type Point struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Event EventType `json:"event,omitempty"`
}

// Action is one stroke.
type Action struct {
	ID     string  `json:"id,omitempty"`
	Tool   string  `json:"tool"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Events []Point `json:"events"`
}

// First returns the first recorded point.
func (a Action) First() (Point, bool) {
	if len(a.Events) == 0 {
		return Point{}, false
	}
	return a.Events[0], true
}

// Last returns the last recorded point.
func (a Action) Last() (Point, bool) {
	if len(a.Events) == 0 {
		return Point{}, false
	}
	return a.Events[len(a.Events)-1], true
}

// Clone returns a copy that does not share the point slice.
func (a Action) Clone() Action {
	c := a
	c.Events = append([]Point(nil), a.Events...)
	return c
}

// Triangle is the decorative arrowhead persisted for a completed stroke.
// P1 is the anchor start, P2/P3 the flanks (P4 repeats P2) and L1..L3 the
// line targets of the filled path.
type Triangle struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
	P3 Point `json:"p3"`
	P4 Point `json:"p4"`
	L1 Point `json:"l1"`
	L2 Point `json:"l2"`
	L3 Point `json:"l3"`
}

// Settings is the drawing configuration picked up by the next stroke.
type Settings struct {
	Tool  string  `json:"tool"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}
