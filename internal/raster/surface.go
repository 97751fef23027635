// Package raster implements a sketch canvas surface on top of fogleman/gg.
package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"
)

type pathOp struct {
	kind byte // 'M', 'L' or 'Z'
	x, y float64
}

// Surface is an in-memory canvas. Paths are rasterised with gg into an
// alpha mask and composited onto the pixels with the current composite
// operation.
type Surface struct {
	id         string
	offX, offY float64

	dc   *gg.Context
	mask *gg.Context

	path      []pathOp
	stroke    color.NRGBA
	fill      color.NRGBA
	lineWidth float64
	lineJoin  string
	lineCap   string
	composite string
}

// New creates a transparent surface of the given pixel size.
func New(id string, width, height int) *Surface {
	s := &Surface{id: id}
	s.Resize(width, height)
	return s
}

// Resize replaces the pixels with a blank image of the new size.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.dc = gg.NewContext(width, height)
	s.mask = gg.NewContext(width, height)
	s.Reset()
}

// SetOffset places the surface on the page.
func (s *Surface) SetOffset(x, y float64) { s.offX, s.offY = x, y }

// Image returns the live pixel buffer.
func (s *Surface) Image() *image.RGBA {
	return s.dc.Image().(*image.RGBA)
}

func (s *Surface) ID() string                 { return s.id }
func (s *Surface) Offset() (float64, float64) { return s.offX, s.offY }

func (s *Surface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

func (s *Surface) Reset() {
	s.dc.SetColor(color.Transparent)
	s.dc.Clear()
	s.path = s.path[:0]
	s.stroke = color.NRGBA{A: 255}
	s.fill = color.NRGBA{A: 255}
	s.lineWidth = 1
	s.lineJoin = "miter"
	s.lineCap = "butt"
	s.composite = "source-over"
}

func (s *Surface) BeginPath()          { s.path = s.path[:0] }
func (s *Surface) MoveTo(x, y float64) { s.path = append(s.path, pathOp{'M', x, y}) }
func (s *Surface) LineTo(x, y float64) { s.path = append(s.path, pathOp{'L', x, y}) }
func (s *Surface) ClosePath()          { s.path = append(s.path, pathOp{kind: 'Z'}) }

func (s *Surface) SetLineWidth(width float64) {
	if width > 0 {
		s.lineWidth = width
	}
}

func (s *Surface) SetLineJoin(join string)   { s.lineJoin = join }
func (s *Surface) SetLineCap(lineCap string) { s.lineCap = lineCap }

func (s *Surface) CompositeOperation() string { return s.composite }

func (s *Surface) SetCompositeOperation(op string) {
	switch op {
	case "source-over", "copy", "destination-over":
		s.composite = op
	default:
		log.Debug().Str("op", op).Msg("[RASTER] composite operation not supported, keeping " + s.composite)
	}
}

func (s *Surface) SetStrokeStyle(c string) { s.setColor(&s.stroke, c) }
func (s *Surface) SetFillStyle(c string)   { s.setColor(&s.fill, c) }

func (s *Surface) setColor(dst *color.NRGBA, c string) {
	parsed, err := ParseColor(c)
	if err != nil {
		// Invalid colours are ignored, as on a browser canvas.
		log.Debug().Err(err).Msg("[RASTER] ignoring colour")
		return
	}
	*dst = parsed
}

func (s *Surface) Stroke() {
	m := s.beginMask()
	s.replay(m)
	m.SetLineWidth(s.lineWidth)
	m.SetLineCap(ggCap(s.lineCap))
	m.SetLineJoin(ggJoin(s.lineJoin))
	m.Stroke()
	blend(s.Image(), m.AsMask(), s.stroke, s.composite)
}

func (s *Surface) Fill() {
	m := s.beginMask()
	s.replay(m)
	m.Fill()
	blend(s.Image(), m.AsMask(), s.fill, s.composite)
}

func (s *Surface) FillRect(x, y, w, h float64) {
	m := s.beginMask()
	m.DrawRectangle(x, y, w, h)
	m.Fill()
	blend(s.Image(), m.AsMask(), s.fill, s.composite)
}

// DataURL encodes the pixels in the given mime type.
func (s *Surface) DataURL(mime string) (string, error) {
	return DataURL(s.Image(), mime)
}

func (s *Surface) beginMask() *gg.Context {
	m := s.mask
	m.ClearPath()
	m.SetColor(color.Transparent)
	m.Clear()
	m.SetColor(color.Black)
	return m
}

func (s *Surface) replay(m *gg.Context) {
	for _, op := range s.path {
		switch op.kind {
		case 'M':
			m.MoveTo(op.x, op.y)
		case 'L':
			m.LineTo(op.x, op.y)
		case 'Z':
			m.ClosePath()
		}
	}
}

func ggCap(c string) gg.LineCap {
	switch c {
	case "round":
		return gg.LineCapRound
	case "square":
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

func ggJoin(j string) gg.LineJoin {
	if j == "round" {
		return gg.LineJoinRound
	}
	return gg.LineJoinBevel
}
