package sketch

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"MySketchBoard/internal/state"
)

func newTestWidget(t *testing.T) (*Widget, *Recorder) {
	t.Helper()
	rec := NewRecorder("simple_sketch", 200, 100)
	return NewWidget(rec, nil, DefaultOptions()), rec
}

func mouse(typ state.EventType, x, y float64) Event {
	return Event{Type: typ, PageX: x, PageY: y}
}

func drawStroke(t *testing.T, w *Widget, points ...[2]float64) {
	t.Helper()
	require.NoError(t, w.OnEvent(mouse(state.EventMouseDown, points[0][0], points[0][1])))
	for _, p := range points[1 : len(points)-1] {
		require.NoError(t, w.OnEvent(mouse(state.EventMouseMove, p[0], p[1])))
	}
	last := points[len(points)-1]
	require.NoError(t, w.OnEvent(mouse(state.EventMouseUp, last[0], last[1])))
}

func TestWidgetEndToEndMarkerStroke(t *testing.T) {
	w, rec := newTestWidget(t)
	drawStroke(t, w, [2]float64{10, 10}, [2]float64{10, 20}, [2]float64{20, 20}, [2]float64{20, 20})

	actions := w.Actions()
	require.Len(t, actions, 1)
	a := actions[0]
	require.Equal(t, ToolMarker, a.Tool)
	require.Equal(t, "#000000", a.Color)
	require.Equal(t, 5.0, a.Size)
	require.Equal(t, []state.Point{
		{X: 10, Y: 10, Event: state.EventMouseDown},
		{X: 10, Y: 20, Event: state.EventMouseMove},
		{X: 20, Y: 20, Event: state.EventMouseMove},
	}, a.Events)
	require.NotEmpty(t, a.ID)
	require.False(t, w.Painting())

	cmds := rec.Commands()
	require.Equal(t, []Command{
		{Op: "lineJoin", Args: []any{LineRound}},
		{Op: "lineCap", Args: []any{LineRound}},
		{Op: "beginPath"},
		{Op: "moveTo", Args: []any{10.0, 10.0}},
		{Op: "lineTo", Args: []any{20.0, 20.0}},
		{Op: "strokeStyle", Args: []any{"#000000"}},
		{Op: "lineWidth", Args: []any{5.0}},
		{Op: "stroke"},
	}, cmds[:8])
	require.Len(t, w.Triangles(), 1)
}

func TestWidgetRecordsMovesInOrder(t *testing.T) {
	w, _ := newTestWidget(t)
	const n = 7
	require.NoError(t, w.OnEvent(mouse(state.EventMouseDown, 0, 0)))
	for i := 1; i <= n; i++ {
		require.NoError(t, w.OnEvent(mouse(state.EventMouseMove, float64(i), float64(2*i))))
	}
	require.NoError(t, w.OnEvent(mouse(state.EventMouseUp, 50, 50)))

	a := w.Actions()[0]
	// The down point leads the n move points.
	require.Len(t, a.Events, n+1)
	for i, p := range a.Events[1:] {
		require.Equal(t, float64(i+1), p.X)
		require.Equal(t, state.EventMouseMove, p.Event)
	}
}

func TestWidgetMovesWhileIdleAreIgnored(t *testing.T) {
	w, rec := newTestWidget(t)
	require.NoError(t, w.OnEvent(mouse(state.EventMouseMove, 5, 5)))
	require.NoError(t, w.OnEvent(mouse(state.EventClick, 5, 5)))
	require.Empty(t, w.Actions())
	require.Equal(t, 0, rec.Resets)

	// A leave while idle only redraws.
	require.NoError(t, w.OnEvent(mouse(state.EventMouseLeave, 5, 5)))
	require.Empty(t, w.Actions())
	require.Empty(t, w.Triangles())
	require.Equal(t, 1, rec.Resets)
}

func TestWidgetCanvasOffset(t *testing.T) {
	w, rec := newTestWidget(t)
	rec.OffsetX, rec.OffsetY = 100, 40
	drawStroke(t, w, [2]float64{110, 50}, [2]float64{130, 60}, [2]float64{130, 60})
	a := w.Actions()[0]
	require.Equal(t, state.Point{X: 10, Y: 10, Event: state.EventMouseDown}, a.Events[0])
	require.Equal(t, state.Point{X: 30, Y: 20, Event: state.EventMouseMove}, a.Events[1])
}

func TestWidgetRedrawIsIdempotent(t *testing.T) {
	w, rec := newTestWidget(t)
	drawStroke(t, w, [2]float64{1, 1}, [2]float64{30, 40}, [2]float64{30, 40})
	require.NoError(t, w.Set("tool", ToolEraser))
	drawStroke(t, w, [2]float64{5, 5}, [2]float64{6, 60}, [2]float64{6, 60})

	require.NoError(t, w.Redraw())
	first := rec.Commands()
	require.NoError(t, w.Redraw())
	require.Equal(t, first, rec.Commands())
}

func TestWidgetRedrawOrder(t *testing.T) {
	w, rec := newTestWidget(t)
	require.NoError(t, w.Set("color", "#ff0000"))
	drawStroke(t, w, [2]float64{0, 0}, [2]float64{10, 10}, [2]float64{10, 10})
	require.NoError(t, w.Set("color", "#00ff00"))
	require.NoError(t, w.OnEvent(mouse(state.EventMouseDown, 20, 20)))
	require.NoError(t, w.OnEvent(mouse(state.EventMouseMove, 30, 35)))

	var styles []string
	for _, c := range rec.Commands() {
		if c.Op == "strokeStyle" || c.Op == "fillStyle" {
			styles = append(styles, c.Op+"="+c.Args[0].(string))
		}
	}
	require.Equal(t, []string{"strokeStyle=#ff0000", "strokeStyle=#00ff00", "fillStyle=#000000"}, styles)
}

func TestEraserDrawRestoresComposite(t *testing.T) {
	rec := NewRecorder("c", 10, 10)
	rec.SetCompositeOperation(CompositeDestinationOver)
	a := state.Action{Tool: ToolEraser, Color: "#123456", Size: 8, Events: []state.Point{{X: 1, Y: 1}, {X: 9, Y: 9}}}

	Eraser{}.Draw(rec, a)

	require.Equal(t, CompositeDestinationOver, rec.CompositeOperation())
	require.Equal(t, "#123456", a.Color)
	cmds := rec.Commands()
	require.Contains(t, cmds, Command{Op: "globalCompositeOperation", Args: []any{CompositeCopy}})
	require.Contains(t, cmds, Command{Op: "strokeStyle", Args: []any{Transparent}})
	require.Equal(t, Command{Op: "globalCompositeOperation", Args: []any{CompositeDestinationOver}}, cmds[len(cmds)-1])
}

func TestMarkerDrawSkipsEmptyAction(t *testing.T) {
	rec := NewRecorder("c", 10, 10)
	Marker{}.Draw(rec, state.Action{Tool: ToolMarker})
	require.Empty(t, rec.Commands())
}

func TestStopWithoutPointsKeepsEmptyAction(t *testing.T) {
	w, _ := newTestWidget(t)
	w.StartPainting()
	require.NoError(t, w.StopPainting())
	actions := w.Actions()
	require.Len(t, actions, 1)
	require.Empty(t, actions[0].Events)
}

func TestTrianglesDisabled(t *testing.T) {
	rec := NewRecorder("c", 10, 10)
	opts := DefaultOptions()
	opts.Triangles = false
	w := NewWidget(rec, nil, opts)
	drawStroke(t, w, [2]float64{0, 0}, [2]float64{3, 4}, [2]float64{3, 4})
	require.Empty(t, w.Triangles())
	require.NotContains(t, rec.Ops(), "fill")
}

func TestUnrecognizedTool(t *testing.T) {
	w, _ := newTestWidget(t)

	err := w.Set("tool", "spraycan")
	var toolErr *UnrecognizedToolError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, "spraycan", toolErr.Tool)
	require.Equal(t, ToolMarker, w.Settings().Tool)

	w.tool = "spraycan"
	err = w.OnEvent(mouse(state.EventMouseDown, 1, 1))
	require.ErrorAs(t, err, &toolErr)

	w.tool = ToolMarker
	w.actions = append(w.actions, state.Action{Tool: "spraycan", Events: []state.Point{{X: 1, Y: 1}}})
	require.ErrorAs(t, w.Redraw(), &toolErr)
}

func TestSetFiresChange(t *testing.T) {
	w, _ := newTestWidget(t)
	var got []string
	w.OnChange = func(event, value string) { got = append(got, event+":"+value) }

	require.NoError(t, w.Set("color", "#abcdef"))
	require.NoError(t, w.Set("size", "12.5"))
	require.Equal(t, []string{"changecolor:#abcdef", "changesize:12.5"}, got)
	require.Equal(t, state.Settings{Tool: ToolMarker, Color: "#abcdef", Size: 12.5}, w.Settings())

	require.Error(t, w.Set("size", "big"))
	var invErr *InvocationError
	require.ErrorAs(t, w.Set("opacity", "1"), &invErr)
	require.Len(t, got, 2)
}

func TestDownloadMimeTypes(t *testing.T) {
	w, _ := newTestWidget(t)
	var opened []string
	w.Opener = OpenerFunc(func(url string) error {
		opened = append(opened, url)
		return nil
	})

	url, err := w.Download("jpg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	url, err = w.Download("")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	require.Len(t, opened, 2)

	require.Equal(t, "image/webp", MimeType("webp"))
}

func TestDownloadOpenerError(t *testing.T) {
	w, _ := newTestWidget(t)
	w.Opener = OpenerFunc(func(string) error { return errors.New("popup blocked") })
	_, err := w.Download("png")
	require.ErrorContains(t, err, "popup blocked")
}

func TestTouchNormalisation(t *testing.T) {
	w, _ := newTestWidget(t)
	require.NoError(t, w.OnEvent(Event{Type: state.EventTouchStart, Touches: []Touch{{PageX: 4, PageY: 6}}}))
	require.NoError(t, w.OnEvent(Event{Type: state.EventTouchMove, Touches: []Touch{{PageX: 8, PageY: 9}, {PageX: 99, PageY: 99}}}))
	require.NoError(t, w.OnEvent(Event{Type: state.EventTouchEnd}))

	a := w.Actions()[0]
	require.Equal(t, []state.Point{
		{X: 4, Y: 6, Event: state.EventTouchStart},
		{X: 8, Y: 9, Event: state.EventTouchMove},
	}, a.Events)
	tri := w.Triangles()[0]
	require.Equal(t, 4.0, tri.P1.X)
	require.Equal(t, 6.0, tri.P1.Y)

	err := w.OnEvent(Event{Type: state.EventTouchMove})
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestClearKeepsStrokeInProgress(t *testing.T) {
	w, _ := newTestWidget(t)
	drawStroke(t, w, [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{1, 1})
	require.NoError(t, w.OnEvent(mouse(state.EventMouseDown, 2, 2)))
	require.NoError(t, w.Clear())
	require.Empty(t, w.Actions())
	require.Empty(t, w.Triangles())
	cur, ok := w.Current()
	require.True(t, ok)
	require.Len(t, cur.Events, 1)
}

func TestOnStrokeReceivesFinalisedAction(t *testing.T) {
	w, _ := newTestWidget(t)
	var got []state.Action
	w.OnStroke = func(a state.Action) { got = append(got, a) }

	require.NoError(t, w.StopPainting())
	require.Empty(t, got)

	drawStroke(t, w, [2]float64{1, 1}, [2]float64{4, 4}, [2]float64{4, 4})
	require.Len(t, got, 1)
	require.Equal(t, w.Actions()[0], got[0])
}

func TestSaveImageAndUpload(t *testing.T) {
	w, rec := newTestWidget(t)
	drawStroke(t, w, [2]float64{1, 2}, [2]float64{3, 4}, [2]float64{5, 6}, [2]float64{5, 6})

	up := &fakeUploader{}
	require.NoError(t, w.Upload(t.Context(), up))
	require.True(t, strings.HasPrefix(up.url, "data:image/png;base64,"))
	require.Equal(t, []state.EndpointPair{{{1, 2}, {5, 6}}}, up.pairs)
	require.Contains(t, rec.Commands(), Command{Op: "fillRect", Args: []any{0.0, 0.0, 200.0, 100.0}})
	require.Equal(t, CompositeSourceOver, rec.CompositeOperation())
}

func TestNewTriangleHorizontalStroke(t *testing.T) {
	tri := NewTriangle(state.Point{X: 0, Y: 0}, state.Point{X: 10, Y: 0})
	for _, p := range []state.Point{tri.P1, tri.P2, tri.P3, tri.P4, tri.L1, tri.L2, tri.L3} {
		require.False(t, math.IsNaN(p.X) || math.IsInf(p.X, 0))
		require.False(t, math.IsNaN(p.Y) || math.IsInf(p.Y, 0))
	}
	// Fallback direction (10, 5) gives the perpendicular (1, -2).
	require.InDelta(t, 5/math.Sqrt(5), tri.P2.X, 1e-9)
	require.InDelta(t, -10/math.Sqrt(5), tri.P2.Y, 1e-9)
	require.InDelta(t, -tri.P2.X, tri.P3.X, 1e-9)
	require.InDelta(t, 10.0/3, tri.L1.X, 1e-9)
	require.Equal(t, 0.0, tri.L1.Y)
	require.Equal(t, tri.P2, tri.P4)
	require.Equal(t, tri.P2, tri.L3)
}

func TestNewTriangleGeometry(t *testing.T) {
	tri := NewTriangle(state.Point{X: 10, Y: 10}, state.Point{X: 10, Y: 40})
	// Vertical stroke: the base is horizontal with half-width 5.
	require.InDelta(t, 15, tri.P2.X, 1e-9)
	require.InDelta(t, 10, tri.P2.Y, 1e-9)
	require.InDelta(t, 5, tri.P3.X, 1e-9)
	require.InDelta(t, 20, tri.L1.Y, 1e-9)

	half := math.Hypot(tri.P2.X-tri.P1.X, tri.P2.Y-tri.P1.Y)
	require.InDelta(t, 5, half, 1e-9)
}

type fakeUploader struct {
	url   string
	pairs []state.EndpointPair
}

func (f *fakeUploader) Upload(_ context.Context, url string, pairs []state.EndpointPair) error {
	f.url, f.pairs = url, pairs
	return nil
}
