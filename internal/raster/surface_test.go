package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"MySketchBoard/internal/sketch"
	"MySketchBoard/internal/state"
)

var _ sketch.Canvas = (*Surface)(nil)

func line(tool string, size float64, x1, y1, x2, y2 float64) state.Action {
	return state.Action{Tool: tool, Color: "#000000", Size: size, Events: []state.Point{{X: x1, Y: y1}, {X: x2, Y: y2}}}
}

func TestMarkerPaintsLine(t *testing.T) {
	s := New("c", 40, 40)
	sketch.Marker{}.Draw(s, line(sketch.ToolMarker, 6, 5, 20, 35, 20))

	img := s.Image()
	require.Equal(t, color.RGBA{A: 255}, img.RGBAAt(20, 20))
	require.Equal(t, uint8(0), img.RGBAAt(20, 5).A)
}

func TestEraserCutsOutMarkedRegion(t *testing.T) {
	s := New("c", 40, 40)
	sketch.Marker{}.Draw(s, line(sketch.ToolMarker, 10, 0, 20, 40, 20))
	sketch.Marker{}.Draw(s, line(sketch.ToolMarker, 4, 20, 0, 20, 40))
	require.Equal(t, uint8(255), s.Image().RGBAAt(10, 20).A)
	require.Equal(t, uint8(255), s.Image().RGBAAt(30, 20).A)

	s.SetCompositeOperation("source-over")
	sketch.Eraser{}.Draw(s, line(sketch.ToolEraser, 6, 5, 20, 15, 20))

	img := s.Image()
	require.Equal(t, uint8(0), img.RGBAAt(10, 20).A)
	// Outside the eraser stroke the marks survive.
	require.Equal(t, uint8(255), img.RGBAAt(30, 20).A)
	require.Equal(t, uint8(255), img.RGBAAt(20, 35).A)
	require.Equal(t, "source-over", s.CompositeOperation())
}

func TestSaveImageFillsBackground(t *testing.T) {
	s := New("c", 30, 30)
	w := sketch.NewWidget(s, nil, sketch.DefaultOptions())
	require.NoError(t, w.Set("color", "#ff0000"))
	w.StartPainting()
	require.NoError(t, w.AddPoint(state.Point{X: 5, Y: 15}))
	require.NoError(t, w.AddPoint(state.Point{X: 25, Y: 15}))
	require.NoError(t, w.StopPainting())

	url, err := w.SaveImage()
	require.NoError(t, err)
	mime, data, err := DecodeDataURL(url)
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, a := img.At(15, 2).RGBA()
	require.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
	r, g, b, _ = img.At(20, 15).RGBA()
	require.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
}

func TestRedrawProducesSamePixels(t *testing.T) {
	s := New("c", 50, 50)
	w := sketch.NewWidget(s, nil, sketch.DefaultOptions())
	w.StartPainting()
	require.NoError(t, w.AddPoint(state.Point{X: 5, Y: 5}))
	require.NoError(t, w.AddPoint(state.Point{X: 45, Y: 30}))
	require.NoError(t, w.StopPainting())

	require.NoError(t, w.Redraw())
	first := append([]byte(nil), s.Image().Pix...)
	require.NoError(t, w.Redraw())
	require.Equal(t, first, s.Image().Pix)
}

func TestDataURLFormats(t *testing.T) {
	s := New("c", 8, 8)
	for _, mime := range Formats() {
		url, err := s.DataURL(mime)
		require.NoError(t, err, mime)
		require.True(t, strings.HasPrefix(url, "data:"+mime+";base64,"), mime)
	}
	_, err := s.DataURL("image/webp")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeDataURLErrors(t *testing.T) {
	for _, url := range []string{"", "http://x", "data:image/png,abc", "data:image/png;base64", "data:image/png;base64,%%%"} {
		_, _, err := DecodeDataURL(url)
		require.Error(t, err, url)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#000000", want: color.NRGBA{A: 255}},
		{in: "#FFF", want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "#1e90ff", want: color.NRGBA{R: 0x1e, G: 0x90, B: 0xff, A: 255}},
		{in: "rgba(0,0,0,0)", want: color.NRGBA{}},
		{in: "rgb(10, 20, 30)", want: color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{in: "rgba(255,0,0,0.5)", want: color.NRGBA{R: 255, A: 128}},
		{in: "red", want: color.NRGBA{R: 255, A: 255}},
		{in: "Orange", want: color.NRGBA{R: 255, G: 165, A: 255}},
		{in: "purple", want: color.NRGBA{R: 128, B: 128, A: 255}},
		{in: "gray", want: color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{in: "transparent", want: color.NRGBA{}},
		{in: "rgb(10%,0%,100%)", want: color.NRGBA{R: 26, B: 255, A: 255}},
		{in: "rgba(0,0,0,50%)", want: color.NRGBA{A: 128}},
		{in: "rgb(300,-5,0)", want: color.NRGBA{R: 255, A: 255}},
		{in: "#12", wantErr: true},
		{in: "rgb(1,2)", wantErr: true},
		{in: "rgb(1,2,x%)", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestInvalidColourKeepsPrevious(t *testing.T) {
	s := New("c", 4, 4)
	s.SetStrokeStyle("#00ff00")
	s.SetStrokeStyle("not a colour")
	require.Equal(t, color.NRGBA{G: 255, A: 255}, s.stroke)
}

func TestBlendOperations(t *testing.T) {
	full := image.NewAlpha(image.Rect(0, 0, 2, 1))
	full.SetAlpha(0, 0, color.Alpha{A: 255})

	newDst := func(c color.RGBA) *image.RGBA {
		dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
		dst.SetRGBA(0, 0, c)
		dst.SetRGBA(1, 0, c)
		return dst
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	dst := newDst(white)
	blend(dst, full, color.NRGBA{A: 128}, "source-over")
	require.InDelta(t, 127, int(dst.RGBAAt(0, 0).R), 1)
	require.Equal(t, uint8(255), dst.RGBAAt(0, 0).A)
	require.Equal(t, white, dst.RGBAAt(1, 0))

	dst = newDst(white)
	blend(dst, full, color.NRGBA{}, "copy")
	require.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
	require.Equal(t, white, dst.RGBAAt(1, 0))

	dst = newDst(color.RGBA{})
	blend(dst, full, color.NRGBA{R: 255, A: 255}, "destination-over")
	require.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{}, dst.RGBAAt(1, 0))

	dst = newDst(white)
	blend(dst, full, color.NRGBA{R: 255, A: 255}, "destination-over")
	require.Equal(t, white, dst.RGBAAt(0, 0))
}
