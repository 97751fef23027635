package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for mime types without an encoder.
var ErrUnsupportedFormat = errors.New("raster: unsupported image format")

// JPEGQuality matches the default quality of a browser canvas export.
const JPEGQuality = 92

var encoders = map[string]func(io.Writer, image.Image) error{
	"image/png": png.Encode,
	"image/jpeg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	},
	"image/gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	"image/bmp": bmp.Encode,
	"image/tiff": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

// Formats lists the mime types Encode accepts.
func Formats() []string {
	out := make([]string, 0, len(encoders))
	for mime := range encoders {
		out = append(out, mime)
	}
	sort.Strings(out)
	return out
}

// Encode writes img in the given mime type.
func Encode(w io.Writer, img image.Image, mime string) error {
	enc, ok := encoders[mime]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
	return enc(w, img)
}

// DataURL encodes img as "data:<mime>;base64,...".
func DataURL(img image.Image, mime string) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, mime); err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL returns the mime type and the bytes of a base64 data URL.
func DecodeDataURL(url string) (string, []byte, error) {
	const prefix = "data:"
	if len(url) < len(prefix) || url[:len(prefix)] != prefix {
		return "", nil, errors.New("raster: not a data url")
	}
	rest := url[len(prefix):]
	sep := bytes.IndexByte([]byte(rest), ',')
	if sep < 0 {
		return "", nil, errors.New("raster: data url without payload")
	}
	meta, payload := rest[:sep], rest[sep+1:]
	const b64 = ";base64"
	if len(meta) < len(b64) || meta[len(meta)-len(b64):] != b64 {
		return "", nil, errors.New("raster: data url is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("raster: decode data url: %w", err)
	}
	return meta[:len(meta)-len(b64)], data, nil
}
