package export

import (
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"MySketchBoard/internal/raster"
	"MySketchBoard/internal/sketch"
	"MySketchBoard/internal/state"
)

// WritePDF draws the strokes and triangles of a canvas of the given size
// onto one A4 page, scaled to fit inside the margins. Eraser strokes have
// nothing to cut out of a vector page and are skipped.
func WritePDF(w io.Writer, actions []state.Action, triangles []state.Triangle, width, height float64) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	pageW, pageH := p.GetPageSize()
	left, top, right, bottom := p.GetMargins()
	scale := math.Min((pageW-left-right)/math.Max(width, 1), (pageH-top-bottom)/math.Max(height, 1))
	at := func(pt state.Point) (float64, float64) {
		return left + pt.X*scale, top + pt.Y*scale
	}

	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")
	for _, a := range actions {
		if a.Tool == sketch.ToolEraser {
			continue
		}
		first, ok := a.First()
		if !ok {
			continue
		}
		last, _ := a.Last()
		// Unknown colours come back as black.
		c, _ := raster.ParseColor(a.Color)
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.SetLineWidth(a.Size * scale)
		x1, y1 := at(first)
		x2, y2 := at(last)
		p.Line(x1, y1, x2, y2)
	}

	p.SetFillColor(0, 0, 0)
	for _, t := range triangles {
		pts := make([]gofpdf.PointType, 0, 3)
		for _, v := range []state.Point{t.P2, t.L1, t.P3} {
			x, y := at(v)
			pts = append(pts, gofpdf.PointType{X: x, Y: y})
		}
		p.Polygon(pts, "F")
	}
	return p.Output(w)
}
