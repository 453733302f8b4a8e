package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// Channel selects which scalar is extracted from a colour image.
type Channel string

const (
	// ChannelLuma is Rec. 601 luma in [0, 255].
	ChannelLuma Channel = "luma"

	// ChannelLightness is CIE L* rescaled from [0, 100] to [0, 255].
	ChannelLightness Channel = "lightness"
)

// ParseChannel accepts "luma" or "lightness"; empty means luma.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case "", ChannelLuma:
		return ChannelLuma, nil
	case ChannelLightness:
		return c, nil
	default:
		return "", fmt.Errorf("unknown channel %q (valid: luma, lightness)", s)
	}
}

// SourceOptions control ToPlane.
type SourceOptions struct {
	Channel Channel

	// Region restricts conversion to part of the image, in image pixel
	// coordinates. The zero rectangle means the whole image.
	Region image.Rectangle

	// MaxDimension downsizes (Lanczos, aspect preserved) any region whose
	// width or height exceeds it. Zero disables downsizing.
	MaxDimension int
}

// Plane is a source image converted to filter input.
type Plane struct {
	// Values is a (rows, cols) view of the selected channel.
	Values ndarray.View[float32]

	// Alpha is nil for opaque sources. Otherwise it holds opacity in [0, 1]
	// and zero marks pixels excluded from filtering.
	Alpha *ndarray.View[float32]

	// Region is the source rectangle the plane covers.
	Region image.Rectangle

	// Scale is plane pixels per source pixel (1 unless downsized).
	Scale float64
}

// ToPlane crops, optionally downsizes and converts img to a float plane.
func ToPlane(img image.Image, opts SourceOptions) (*Plane, error) {
	bounds := img.Bounds()
	region := opts.Region
	if region == (image.Rectangle{}) {
		region = bounds
	}
	if !region.In(bounds) {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			region.Min.X, region.Min.Y, region.Max.X, region.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if region.Empty() {
		return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	channel := opts.Channel
	if channel == "" {
		channel = ChannelLuma
	}

	src := imaging.Crop(img, region)
	scale := 1.0
	if m := opts.MaxDimension; m > 0 && (region.Dx() > m || region.Dy() > m) {
		src = imaging.Fit(src, m, m, imaging.Lanczos)
		scale = float64(src.Bounds().Dx()) / float64(region.Dx())
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	values := ndarray.Make[float32](h, w)

	switch channel {
	case ChannelLuma:
		// Grayscale keeps RGBA layout with the luma replicated in R, G and B.
		gray := effect.Grayscale(src)
		for y := 0; y < h; y++ {
			row := values.Row(y)
			for x := 0; x < w; x++ {
				row[x] = float32(gray.Pix[y*gray.Stride+x*4])
			}
		}
	case ChannelLightness:
		for y := 0; y < h; y++ {
			row := values.Row(y)
			for x := 0; x < w; x++ {
				off := y*src.Stride + x*4
				c := colorful.Color{
					R: float64(src.Pix[off]) / 255.0,
					G: float64(src.Pix[off+1]) / 255.0,
					B: float64(src.Pix[off+2]) / 255.0,
				}
				l, _, _ := c.Lab()
				row[x] = float32(min(max(l, 0), 1) * 255)
			}
		}
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}

	return &Plane{
		Values: values,
		Alpha:  alphaMask(src),
		Region: region,
		Scale:  scale,
	}, nil
}

// alphaMask returns nil when every pixel is opaque.
func alphaMask(src *image.NRGBA) *ndarray.View[float32] {
	if src.Opaque() {
		return nil
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	mask := ndarray.Make[float32](h, w)
	for y := 0; y < h; y++ {
		row := mask.Row(y)
		for x := 0; x < w; x++ {
			row[x] = float32(src.Pix[y*src.Stride+x*4+3]) / 255
		}
	}
	return &mask
}
