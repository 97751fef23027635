package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// blend composites src through mask onto dst. Pixels where the mask is
// empty are left alone for every operation, so "copy" cuts the shape out
// instead of clearing the rest of the surface.
func blend(dst *image.RGBA, mask *image.Alpha, src color.NRGBA, op string) {
	r := dst.Bounds().Intersect(mask.Bounds())
	switch op {
	case "copy":
		draw.DrawMask(dst, r, image.NewUniform(src), image.Point{}, mask, r.Min, draw.Src)
	case "destination-over":
		destinationOver(dst, r, mask, src)
	default:
		draw.DrawMask(dst, r, image.NewUniform(src), image.Point{}, mask, r.Min, draw.Over)
	}
}

// destinationOver paints src behind the existing pixels.
func destinationOver(dst *image.RGBA, r image.Rectangle, mask *image.Alpha, src color.NRGBA) {
	sa := unit(src.A)
	sr, sg, sb := unit(src.R)*sa, unit(src.G)*sa, unit(src.B)*sa
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := unit(mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			d := dst.Pix[i : i+4 : i+4]
			k := m * (1 - unit(d[3]))
			d[0] = byte8(unit(d[0]) + sr*k)
			d[1] = byte8(unit(d[1]) + sg*k)
			d[2] = byte8(unit(d[2]) + sb*k)
			d[3] = byte8(unit(d[3]) + sa*k)
		}
	}
}

func unit(v uint8) float64 { return float64(v) / 255 }

func byte8(v float64) uint8 {
	return uint8(clamp(v, 0, 1)*255 + 0.5)
}
