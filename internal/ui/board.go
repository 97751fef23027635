package ui

import (
	"image"
	"image/draw"
	"io"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/export"
	"MySketchBoard/internal/raster"
	"MySketchBoard/internal/sketch"
	"MySketchBoard/internal/state"
)

// CanvasID is the id the board's surface is bound under.
const CanvasID = "board"

// BoardWidget shows a sketch widget drawing on a raster surface and feeds it
// the pointer events of the window.
type BoardWidget struct {
	widget.BaseWidget

	// mu guards the sketch and its surface; Fyne may rasterise from its
	// render goroutine.
	mu       sync.Mutex
	surface  *raster.Surface
	registry *sketch.Registry
	sketch   *sketch.Widget

	pending  []state.Action
	onStroke func(state.Action, []state.EndpointPair)

	raster *canvas.Raster
	last   fyne.Position
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget binds a sketch of width by height pixels.
func NewBoardWidget(opts sketch.Options, width, height int) (*BoardWidget, error) {
	b := &BoardWidget{
		surface:  raster.New(CanvasID, width, height),
		registry: sketch.NewRegistry(nil),
	}
	w, err := b.registry.Bind([]sketch.Canvas{b.surface}, opts)
	if err != nil {
		return nil, err
	}
	b.sketch = w
	w.OnStroke = func(a state.Action) { b.pending = append(b.pending, a) }
	if err := w.Redraw(); err != nil {
		return nil, err
	}

	b.raster = canvas.NewRaster(b.draw)
	b.raster.ScaleMode = canvas.ImageScaleSmooth
	b.raster.SetMinSize(fyne.NewSize(float32(width), float32(height)))
	b.ExtendBaseWidget(b)
	return b, nil
}

// With runs fn with exclusive access to the sketch and refreshes the board.
func (b *BoardWidget) With(fn func(w *sketch.Widget) error) error {
	b.mu.Lock()
	err := fn(b.sketch)
	done, onStroke := b.pending, b.onStroke
	b.pending = nil
	var pairs []state.EndpointPair
	if len(done) > 0 {
		pairs = b.sketch.EndpointPairs()
	}
	b.mu.Unlock()

	b.raster.Refresh()
	if onStroke != nil {
		for _, a := range done {
			onStroke(a, pairs)
		}
	}
	return err
}

// Invoke runs a sketch command on the board.
func (b *BoardWidget) Invoke(command string, args ...string) (any, error) {
	var out any
	err := b.With(func(*sketch.Widget) error {
		var err error
		out, err = b.registry.Invoke(CanvasID, command, args...)
		return err
	})
	return out, err
}

// Set changes the tool, colour or size of the next stroke.
func (b *BoardWidget) Set(key, value string) error {
	return b.With(func(w *sketch.Widget) error { return w.Set(key, value) })
}

// Clear removes every stroke.
func (b *BoardWidget) Clear() error {
	return b.With(func(w *sketch.Widget) error { return w.Clear() })
}

// Settings returns the tool, colour and size of the next stroke.
func (b *BoardWidget) Settings() state.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sketch.Settings()
}

// Actions returns the completed strokes.
func (b *BoardWidget) Actions() []state.Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sketch.Actions()
}

// EndpointPairs returns the first and last point of every stroke.
func (b *BoardWidget) EndpointPairs() []state.EndpointPair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sketch.EndpointPairs()
}

// SetOpener sets where downloads go.
func (b *BoardWidget) SetOpener(o sketch.Opener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sketch.Opener = o
}

// OnStroke registers fn for every finalised stroke, called with the
// strokes of the whole drawing once the board is unlocked.
func (b *BoardWidget) OnStroke(fn func(a state.Action, pairs []state.EndpointPair)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStroke = fn
}

// Download encodes the board in format and hands it to the opener.
func (b *BoardWidget) Download(format string) error {
	_, err := b.Invoke("download", format)
	return err
}

// Snapshot returns the PNG data URL and the strokes an upload sends. Call it
// on the UI goroutine and upload from another.
func (b *BoardWidget) Snapshot() (string, []state.EndpointPair, error) {
	var (
		url   string
		pairs []state.EndpointPair
	)
	err := b.With(func(w *sketch.Widget) error {
		var err error
		url, err = w.SaveImage()
		pairs = w.EndpointPairs()
		return err
	})
	return url, pairs, err
}

// WritePDF writes the strokes as a PDF page.
func (b *BoardWidget) WritePDF(out io.Writer) error {
	b.mu.Lock()
	actions, triangles := b.sketch.Actions(), b.sketch.Triangles()
	width, height := b.surface.Size()
	b.mu.Unlock()
	return export.WritePDF(out, actions, triangles, width, height)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.dispatch(state.EventMouseDown, e.Position)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.dispatch(state.EventMouseUp, e.Position)
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.dispatch(state.EventMouseMove, e.Position)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.dispatch(state.EventMouseMove, e.Position)
}

func (b *BoardWidget) DragEnd() {
	b.dispatch(state.EventMouseUp, b.last)
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseOut() {
	b.dispatch(state.EventMouseOut, b.last)
}

func (b *BoardWidget) dispatch(typ state.EventType, pos fyne.Position) {
	b.last = pos
	x, y := b.toCanvas(pos)
	err := b.With(func(w *sketch.Widget) error {
		return w.OnEvent(sketch.Event{Type: typ, PageX: x, PageY: y})
	})
	if err != nil {
		log.Error().Err(err).Str("event", string(typ)).Msg("[UI] event failed")
	}
}

// toCanvas maps a widget position to surface pixels; the raster is
// stretched over the widget.
func (b *BoardWidget) toCanvas(pos fyne.Position) (float64, float64) {
	cw, ch := b.surface.Size()
	size := b.Size()
	sx, sy := 1.0, 1.0
	if size.Width > 0 && size.Height > 0 {
		sx = cw / float64(size.Width)
		sy = ch / float64(size.Height)
	}
	return float64(pos.X) * sx, float64(pos.Y) * sy
}

func (b *BoardWidget) draw(w, h int) image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.surface.Image()
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), src, image.Point{}, draw.Over)
	return out
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}
