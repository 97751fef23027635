package sketch

import (
	"sort"

	"MySketchBoard/internal/state"
)

// Built-in tool names.
const (
	ToolMarker = "marker"
	ToolEraser = "eraser"
)

// Tool handles the pointer events of a stroke and knows how to render it.
type Tool interface {
	OnEvent(w *Widget, p state.Point) error
	Draw(s Surface, a state.Action)
}

// Toolbox maps tool names to renderers.
type Toolbox struct {
	tools map[string]Tool
}

// NewToolbox returns an empty toolbox.
func NewToolbox() *Toolbox {
	return &Toolbox{tools: make(map[string]Tool)}
}

// DefaultToolbox returns a toolbox holding the marker and the eraser.
func DefaultToolbox() *Toolbox {
	t := NewToolbox()
	t.Register(ToolMarker, Marker{})
	t.Register(ToolEraser, Eraser{})
	return t
}

// Register adds or replaces a tool.
func (t *Toolbox) Register(name string, tool Tool) {
	t.tools[name] = tool
}

// Lookup returns the tool registered under name.
func (t *Toolbox) Lookup(name string) (Tool, error) {
	tool, ok := t.tools[name]
	if !ok {
		return nil, &UnrecognizedToolError{Tool: name}
	}
	return tool, nil
}

// Names returns the registered tool names in sorted order.
func (t *Toolbox) Names() []string {
	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marker draws a round-capped straight line from the first to the last
// point of an action.
type Marker struct{}

func (Marker) OnEvent(w *Widget, p state.Point) error {
	switch p.Event {
	case state.EventMouseDown, state.EventTouchStart:
		w.anchorStart = p
		w.StartPainting()
	case state.EventMouseUp, state.EventMouseOut, state.EventMouseLeave,
		state.EventTouchEnd, state.EventTouchCancel:
		w.anchorEnd = p
		return w.StopPainting()
	}
	if w.painting {
		return w.AddPoint(p)
	}
	return nil
}

func (Marker) Draw(s Surface, a state.Action) {
	first, ok := a.First()
	if !ok {
		return
	}
	last, _ := a.Last()

	s.SetLineJoin(LineRound)
	s.SetLineCap(LineRound)
	s.BeginPath()
	s.MoveTo(first.X, first.Y)
	s.LineTo(last.X, last.Y)
	s.SetStrokeStyle(a.Color)
	s.SetLineWidth(a.Size)
	s.Stroke()
}

// Eraser cuts the marker's line out of the surface.
type Eraser struct{}

func (Eraser) OnEvent(w *Widget, p state.Point) error {
	return Marker{}.OnEvent(w, p)
}

func (Eraser) Draw(s Surface, a state.Action) {
	old := s.CompositeOperation()
	s.SetCompositeOperation(CompositeCopy)
	erased := a.Clone()
	erased.Color = Transparent
	Marker{}.Draw(s, erased)
	s.SetCompositeOperation(old)
}
