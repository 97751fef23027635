//go:build js && wasm

// Package jscanvas drives an HTML canvas element from a sketch widget.
package jscanvas

import (
	"fmt"
	"strings"
	"syscall/js"

	"MySketchBoard/internal/raster"
)

// Surface forwards drawing calls to the 2d context of a canvas element.
type Surface struct {
	el  js.Value
	ctx js.Value
}

// New wraps el, which must be a canvas element.
func New(el js.Value) *Surface {
	return &Surface{el: el, ctx: el.Call("getContext", "2d")}
}

// Element is the wrapped canvas element.
func (s *Surface) Element() js.Value { return s.el }

func (s *Surface) ID() string { return s.el.Get("id").String() }

// Offset is the page position of the element, like jQuery's offset().
func (s *Surface) Offset() (float64, float64) {
	rect := s.el.Call("getBoundingClientRect")
	win := js.Global().Get("window")
	return rect.Get("left").Float() + win.Get("pageXOffset").Float(),
		rect.Get("top").Float() + win.Get("pageYOffset").Float()
}

func (s *Surface) Size() (float64, float64) {
	return s.el.Get("width").Float(), s.el.Get("height").Float()
}

// Reset matches the pixel width to the displayed width, which clears the
// canvas and its context state.
func (s *Surface) Reset() {
	s.el.Set("width", s.el.Get("clientWidth"))
	s.ctx = s.el.Call("getContext", "2d")
}

func (s *Surface) FillRect(x, y, w, h float64) { s.ctx.Call("fillRect", x, y, w, h) }
func (s *Surface) BeginPath()                  { s.ctx.Call("beginPath") }
func (s *Surface) MoveTo(x, y float64)         { s.ctx.Call("moveTo", x, y) }
func (s *Surface) LineTo(x, y float64)         { s.ctx.Call("lineTo", x, y) }
func (s *Surface) ClosePath()                  { s.ctx.Call("closePath") }
func (s *Surface) Stroke()                     { s.ctx.Call("stroke") }
func (s *Surface) Fill()                       { s.ctx.Call("fill") }
func (s *Surface) SetStrokeStyle(c string)     { s.ctx.Set("strokeStyle", c) }
func (s *Surface) SetFillStyle(c string)       { s.ctx.Set("fillStyle", c) }
func (s *Surface) SetLineWidth(w float64)      { s.ctx.Set("lineWidth", w) }
func (s *Surface) SetLineJoin(j string)        { s.ctx.Set("lineJoin", j) }
func (s *Surface) SetLineCap(c string)         { s.ctx.Set("lineCap", c) }

func (s *Surface) CompositeOperation() string {
	return s.ctx.Get("globalCompositeOperation").String()
}

func (s *Surface) SetCompositeOperation(op string) {
	s.ctx.Set("globalCompositeOperation", op)
}

// DataURL encodes the canvas. Browsers fall back to png for types they
// cannot encode; that is reported as raster.ErrUnsupportedFormat.
func (s *Surface) DataURL(mime string) (string, error) {
	url := s.el.Call("toDataURL", mime).String()
	if !strings.HasPrefix(url, "data:"+mime) {
		return "", fmt.Errorf("%w: %s", raster.ErrUnsupportedFormat, mime)
	}
	return url, nil
}
