package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	// registers decoders
	_ "image/gif"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/vtmap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	FormatPNG    = "png"
	FormatPNG256 = "png256"
	FormatPNG8   = "png8"
	FormatJPEG   = "jpeg"
	FormatTIFF   = "tiff"
	FormatBMP    = "bmp"
	FormatRaw    = "raw"

	DefaultFormat      = FormatPNG256
	defaultJPEGQuality = 85
)

var paletted256 = append(color.Palette{color.Transparent}, palette.WebSafe...)

// Encode writes the image in the named format. Format options after a ':' (e.g. "png8:z=1") are ignored.
// "jpegNN" encodes with quality NN; "raw" is the RGBA pixel buffer.
func Encode(img image.Image, format string) ([]byte, errorsx.Error) {
	name, _, _ := strings.Cut(strings.ToLower(format), ":")

	buf := bytes.NewBuffer(nil)
	var err error

	switch {
	case name == FormatPNG || name == "png32":
		err = png.Encode(buf, img)
	case name == FormatPNG256 || name == FormatPNG8:
		err = png.Encode(buf, toPaletted(img))
	case strings.HasPrefix(name, FormatJPEG):
		quality, qualityErr := jpegQuality(name)
		if qualityErr != nil {
			return nil, vtmap.NewEncodingError(qualityErr)
		}
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
	case name == FormatTIFF:
		err = tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	case name == FormatBMP:
		err = bmp.Encode(buf, img)
	case name == FormatRaw:
		return append([]byte(nil), toRGBA(img).Pix...), nil
	default:
		return nil, vtmap.NewEncodingError(errorsx.Errorf("unknown format: %q", format))
	}

	if err != nil {
		return nil, vtmap.NewEncodingError(errorsx.Wrap(err, "format", format))
	}

	return buf.Bytes(), nil
}

// ContentType is the MIME type of images encoded in a format
func ContentType(format string) string {
	name, _, _ := strings.Cut(strings.ToLower(format), ":")

	switch {
	case strings.HasPrefix(name, "png"):
		return "image/png"
	case strings.HasPrefix(name, FormatJPEG):
		return "image/jpeg"
	case name == FormatTIFF:
		return "image/tiff"
	case name == FormatBMP:
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

func jpegQuality(name string) (int, errorsx.Error) {
	qualityString := strings.TrimPrefix(name, FormatJPEG)
	if qualityString == "" {
		return defaultJPEGQuality, nil
	}

	quality, err := strconv.Atoi(qualityString)
	if err != nil || quality < 1 || quality > 100 {
		return 0, errorsx.Errorf("invalid jpeg quality: %q", name)
	}

	return quality, nil
}

func toPaletted(img image.Image) *image.Paletted {
	paletted := image.NewPaletted(img.Bounds(), paletted256)
	draw.Draw(paletted, paletted.Rect, img, img.Bounds().Min, draw.Src)
	return paletted
}

func toRGBA(img image.Image) *image.RGBA {
	switch i := img.(type) {
	case *Canvas:
		return i.RGBA
	case *image.RGBA:
		return i
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return rgba
}

// DecodeInto decodes png, jpeg, gif, bmp, tiff or webp data onto the canvas, which must be the same size as the image
func DecodeInto(c *Canvas, data []byte) errorsx.Error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return vtmap.NewEncodingError(errorsx.Wrap(err))
	}

	if img.Bounds().Dx() != c.Width() || img.Bounds().Dy() != c.Height() {
		return vtmap.NewEncodingError(errorsx.Errorf(
			"image is %dx%d but the canvas is %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), c.Width(), c.Height(),
		))
	}

	draw.Draw(c.RGBA, c.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}
