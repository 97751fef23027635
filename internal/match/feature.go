// Package match ranks saved sketches by how closely their strokes resemble
// a drawing. Every stroke is reduced to a feature: its direction class and
// its start point.
package match

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"MySketchBoard/internal/state"
)

// Direction classes of a stroke feature.
const (
	Hold  = "h"
	Down  = "d"
	Up    = "u"
	Right = "r"
)

var (
	referenceAngles = []float64{-90, -45, 0, 45, 90}
	referenceKinds  = []string{Down, Up, Right, Down, Up}
)

// Feature is the kind of a stroke and where it starts. It is stored as a
// [kind, x, y] JSON array.
type Feature struct {
	Kind string
	X, Y float64
}

func (f Feature) vec() r2.Vec { return r2.Vec{X: f.X, Y: f.Y} }

func (f Feature) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Kind, f.X, f.Y})
}

func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("match: feature needs 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &f.Kind); err != nil {
		return fmt.Errorf("match: feature kind: %w", err)
	}
	if err := json.Unmarshal(raw[1], &f.X); err != nil {
		return fmt.Errorf("match: feature x: %w", err)
	}
	if err := json.Unmarshal(raw[2], &f.Y); err != nil {
		return fmt.Errorf("match: feature y: %w", err)
	}
	return nil
}

// StrokeFeature classifies a stroke by the reference angle nearest to its
// direction. A stroke that ends where it starts is a Hold.
func StrokeFeature(p state.EndpointPair) Feature {
	x1, y1 := p.Start()
	x2, y2 := p.End()
	if x1 == x2 && y1 == y2 {
		return Feature{Kind: Hold, X: x1, Y: y1}
	}
	angle := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
	best := 0
	for i, a := range referenceAngles {
		if math.Abs(angle-a) < math.Abs(angle-referenceAngles[best]) {
			best = i
		}
	}
	return Feature{Kind: referenceKinds[best], X: x1, Y: y1}
}

// Features maps every stroke to its feature.
func Features(strokes []state.EndpointPair) []Feature {
	out := make([]Feature, len(strokes))
	for i, s := range strokes {
		out[i] = StrokeFeature(s)
	}
	return out
}

// Normalize moves the features so the smallest coordinates are zero and
// scales both axes by the height of the drawing plus one.
func Normalize(fts []Feature) []Feature {
	if len(fts) == 0 {
		return nil
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, f := range fts {
		minX, maxX = math.Min(minX, f.X), math.Max(maxX, f.X)
		minY, maxY = math.Min(minY, f.Y), math.Max(maxY, f.Y)
	}
	z := 1 / (maxY - minY + 1)
	origin := r2.Vec{X: minX, Y: minY}
	out := make([]Feature, len(fts))
	for i, f := range fts {
		v := r2.Scale(z, r2.Sub(f.vec(), origin))
		out[i] = Feature{Kind: f.Kind, X: v.X, Y: v.Y}
	}
	return out
}
