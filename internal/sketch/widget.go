package sketch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/state"
)

// Options configure a widget when it is bound to a canvas.
type Options struct {
	// ToolLinks enables control links that target the canvas.
	ToolLinks    bool
	DefaultTool  string
	DefaultColor string
	DefaultSize  float64
	// Triangles enables the arrowhead overlay of completed strokes.
	Triangles     bool
	TriangleColor string
}

// DefaultOptions match a plain marker of size 5 in black.
func DefaultOptions() Options {
	return Options{
		ToolLinks:     true,
		DefaultTool:   ToolMarker,
		DefaultColor:  "#000000",
		DefaultSize:   5,
		Triangles:     true,
		TriangleColor: "#000000",
	}
}

// Widget records strokes drawn on one canvas. It is not safe for concurrent
// use; hosts call it from their UI event loop.
type Widget struct {
	canvas Canvas
	tools  *Toolbox
	opts   Options
	clock  *state.Clock

	tool     string
	color    string
	size     float64
	painting bool

	actions   []state.Action
	action    *state.Action
	triangles []state.Triangle

	anchorStart state.Point
	anchorEnd   state.Point

	lastX, lastY float64
	hasLast      bool

	// OnChange is called as OnChange("change"+key, value) after a setting
	// changes.
	OnChange func(event, value string)
	// Opener receives the data URL of every download.
	Opener Opener
	// OnStroke is called with every finalised action.
	OnStroke func(state.Action)
}

// NewWidget binds a widget to canvas. A nil toolbox means DefaultToolbox.
func NewWidget(canvas Canvas, tools *Toolbox, opts Options) *Widget {
	if tools == nil {
		tools = DefaultToolbox()
	}
	return &Widget{
		canvas: canvas,
		tools:  tools,
		opts:   opts,
		clock:  state.NewClock(),
		tool:   opts.DefaultTool,
		color:  opts.DefaultColor,
		size:   opts.DefaultSize,
	}
}

// Canvas returns the canvas the widget draws on.
func (w *Widget) Canvas() Canvas { return w.canvas }

// Options returns the options the widget was bound with.
func (w *Widget) Options() Options { return w.opts }

// Painting reports whether a stroke is being recorded.
func (w *Widget) Painting() bool { return w.painting }

// OnEvent dispatches a pointer event to the current tool.
func (w *Widget) OnEvent(e Event) error {
	p, err := w.locate(e)
	if err != nil {
		return err
	}
	tool, err := w.tools.Lookup(w.tool)
	if err != nil {
		return err
	}
	return tool.OnEvent(w, p)
}

// StartPainting begins a new action with the current settings.
func (w *Widget) StartPainting() {
	w.painting = true
	w.action = &state.Action{
		Tool:   w.tool,
		Color:  w.color,
		Size:   w.size,
		Events: []state.Point{},
	}
}

// AddPoint appends p to the current action and redraws. It is a no-op while
// idle.
func (w *Widget) AddPoint(p state.Point) error {
	if !w.painting || w.action == nil {
		return nil
	}
	w.action.Events = append(w.action.Events, p)
	return w.Redraw()
}

// StopPainting finalises the current action, adds its triangle when the
// widget was painting, and redraws.
func (w *Widget) StopPainting() error {
	if w.action != nil {
		w.action.ID = w.clock.NextID()
		w.actions = append(w.actions, *w.action)
		if w.painting && w.opts.Triangles {
			w.triangles = append(w.triangles, NewTriangle(w.anchorStart, w.anchorEnd))
		}
		log.Debug().Str("action", w.action.ID).Str("tool", w.action.Tool).
			Int("points", len(w.action.Events)).Msg("[SKETCH] stroke finalised")
	}
	done := w.action
	w.painting = false
	w.action = nil
	if err := w.Redraw(); err != nil {
		return err
	}
	if done != nil && w.OnStroke != nil {
		w.OnStroke(done.Clone())
	}
	return nil
}

// Redraw clears the canvas and renders the completed actions in order, then
// the action in progress, then every triangle.
func (w *Widget) Redraw() error {
	w.canvas.Reset()
	for _, a := range w.actions {
		if err := w.draw(a); err != nil {
			return err
		}
	}
	if w.painting && w.action != nil {
		if err := w.draw(*w.action); err != nil {
			return err
		}
	}
	for _, t := range w.triangles {
		drawTriangle(w.canvas, t, w.opts.TriangleColor)
	}
	return nil
}

func (w *Widget) draw(a state.Action) error {
	if a.Tool == "" {
		return nil
	}
	tool, err := w.tools.Lookup(a.Tool)
	if err != nil {
		return err
	}
	tool.Draw(w.canvas, a)
	return nil
}

// Settings returns the tool, colour and size the next stroke will use.
func (w *Widget) Settings() state.Settings {
	return state.Settings{Tool: w.tool, Color: w.color, Size: w.size}
}

// Set changes one of "tool", "color" or "size".
func (w *Widget) Set(key, value string) error {
	switch key {
	case "tool":
		if _, err := w.tools.Lookup(value); err != nil {
			return err
		}
		w.tool = value
	case "color":
		w.color = value
	case "size":
		size, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("sketch: invalid size %q: %w", value, err)
		}
		w.size = size
	default:
		return &InvocationError{Command: key, Reason: "unknown setting"}
	}
	if w.OnChange != nil {
		w.OnChange("change"+key, value)
	}
	return nil
}

// Actions returns a copy of the completed actions.
func (w *Widget) Actions() []state.Action {
	out := make([]state.Action, len(w.actions))
	for i, a := range w.actions {
		out[i] = a.Clone()
	}
	return out
}

// Current returns the action in progress.
func (w *Widget) Current() (state.Action, bool) {
	if w.action == nil {
		return state.Action{}, false
	}
	return w.action.Clone(), true
}

// Triangles returns a copy of the persisted triangles.
func (w *Widget) Triangles() []state.Triangle {
	return append([]state.Triangle(nil), w.triangles...)
}

// EndpointPairs returns the first and last point of every completed action.
func (w *Widget) EndpointPairs() []state.EndpointPair {
	return state.EndpointPairs(w.actions)
}

// Clear drops every completed action and triangle and redraws. A stroke in
// progress survives.
func (w *Widget) Clear() error {
	w.actions = nil
	w.triangles = nil
	return w.Redraw()
}

// MimeType maps a download format to an image mime type. An empty format
// means png and "jpg" is spelled "jpeg".
func MimeType(format string) string {
	if format == "" {
		format = "png"
	}
	if format == "jpg" {
		format = "jpeg"
	}
	return "image/" + format
}

// Download encodes the canvas in format and hands the data URL to the
// opener.
func (w *Widget) Download(format string) (string, error) {
	url, err := w.canvas.DataURL(MimeType(format))
	if err != nil {
		return "", fmt.Errorf("sketch: download %s: %w", MimeType(format), err)
	}
	if w.Opener != nil {
		if err := w.Opener.Open(url); err != nil {
			return url, fmt.Errorf("sketch: open download: %w", err)
		}
	}
	return url, nil
}

// SaveImage paints a white background behind the drawing and returns the
// canvas as a PNG data URL.
func (w *Widget) SaveImage() (string, error) {
	width, height := w.canvas.Size()
	old := w.canvas.CompositeOperation()
	w.canvas.SetCompositeOperation(CompositeDestinationOver)
	w.canvas.SetFillStyle("#FFFFFF")
	w.canvas.FillRect(0, 0, width, height)
	w.canvas.SetCompositeOperation(old)
	return w.canvas.DataURL("image/png")
}

// Upload saves the image and submits it with the stroke endpoints.
func (w *Widget) Upload(ctx context.Context, u Uploader) error {
	url, err := w.SaveImage()
	if err != nil {
		return fmt.Errorf("sketch: save image: %w", err)
	}
	return u.Upload(ctx, url, w.EndpointPairs())
}
