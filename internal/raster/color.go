package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor understands "#rgb", "#rrggbb", "rgb(r,g,b)", "rgba(r,g,b,a)"
// with plain or percentage components, "transparent" and the CSS colour
// names.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("raster: bad colour %q: %w", s, err)
		}
		r, g, b := c.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(s, fn) && strings.HasSuffix(s, ")") {
			return parseFunctional(s[len(fn):len(s)-1], fn == "rgba(")
		}
	}
	return color.NRGBA{}, fmt.Errorf("raster: bad colour %q", s)
}

func parseFunctional(body string, withAlpha bool) (color.NRGBA, error) {
	parts := strings.Split(body, ",")
	if (withAlpha && len(parts) != 4) || (!withAlpha && len(parts) != 3) {
		return color.NRGBA{}, fmt.Errorf("raster: bad colour components %q", body)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := component(parts[i], 255)
		if err != nil {
			return color.NRGBA{}, err
		}
		rgb[i] = uint8(v + 0.5)
	}
	alpha := 1.0
	if withAlpha {
		v, err := component(parts[3], 1)
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha = v
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(alpha*255 + 0.5)}, nil
}

// component parses a number or a percentage of full, clamped to [0, full].
func component(s string, full float64) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = full / 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("raster: bad colour component %q: %w", s, err)
	}
	return clamp(v*scale, 0, full), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
