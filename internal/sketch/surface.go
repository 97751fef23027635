// Package sketch implements the freehand drawing widget: a stroke state
// machine that records pointer events into actions and redraws every action
// onto a canvas surface after each change.
package sketch

import (
	"context"

	"MySketchBoard/internal/state"
)

// Composite operations understood by every surface.
const (
	CompositeSourceOver      = "source-over"
	CompositeCopy            = "copy"
	CompositeDestinationOver = "destination-over"
)

// Line joins and caps.
const (
	LineRound = "round"
	LineButt  = "butt"
	LineBevel = "bevel"
)

// Transparent is the colour the eraser paints with.
const Transparent = "rgba(0,0,0,0)"

// Surface is the subset of a canvas 2D rendering context the widget draws
// with. Stroke and Fill keep the current path, as on a browser canvas.
type Surface interface {
	// Reset clears every pixel and restores the default drawing state.
	Reset()
	FillRect(x, y, w, h float64)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Stroke()
	Fill()
	SetStrokeStyle(color string)
	SetFillStyle(color string)
	SetLineWidth(width float64)
	SetLineJoin(join string)
	SetLineCap(lineCap string)
	CompositeOperation() string
	SetCompositeOperation(op string)
	// DataURL encodes the current pixels as "data:<mime>;base64,...".
	DataURL(mime string) (string, error)
}

// Canvas is a surface bound to an element of the page.
type Canvas interface {
	Surface
	ID() string
	// Offset is the page position of the canvas' top-left corner.
	Offset() (x, y float64)
	Size() (width, height float64)
}

// Opener shows a data URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Uploader submits an exported image together with the stroke endpoints.
type Uploader interface {
	Upload(ctx context.Context, dataURL string, pairs []state.EndpointPair) error
}
