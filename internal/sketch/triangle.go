package sketch

import (
	"gonum.org/v1/gonum/spatial/r2"

	"MySketchBoard/internal/state"
)

const (
	triangleHalfWidth = 5
	// triangleFallbackY replaces a zero Y component of the stroke direction.
	triangleFallbackY = 5
)

// NewTriangle derives the arrowhead of a stroke from its anchor start and
// end. The base straddles start at half-width 5 perpendicular to the
// stroke; the apex sits one third of the way to end.
func NewTriangle(start, end state.Point) state.Triangle {
	s := r2.Vec{X: start.X, Y: start.Y}
	e := r2.Vec{X: end.X, Y: end.Y}
	dir := r2.Sub(e, s)

	v := dir
	if v.Y == 0 {
		v.Y = triangleFallbackY
	}
	perp := r2.Scale(triangleHalfWidth, r2.Unit(r2.Vec{X: 1, Y: -v.X / v.Y}))

	left := r2.Add(s, perp)
	right := r2.Sub(s, perp)
	apex := r2.Add(s, r2.Scale(1.0/3, dir))

	return state.Triangle{
		P1: point(s),
		P2: point(left),
		P3: point(right),
		P4: point(left),
		L1: point(apex),
		L2: point(apex),
		L3: point(left),
	}
}

func point(v r2.Vec) state.Point {
	return state.Point{X: v.X, Y: v.Y}
}

func drawTriangle(s Surface, t state.Triangle, color string) {
	s.SetFillStyle(color)
	s.BeginPath()
	s.MoveTo(t.P2.X, t.P2.Y)
	s.LineTo(t.L1.X, t.L1.Y)
	s.LineTo(t.P3.X, t.P3.Y)
	s.LineTo(t.L3.X, t.L3.Y)
	s.ClosePath()
	s.Fill()
}
