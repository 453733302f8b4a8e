package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// maxUpscale bounds RenderOptions.Upscale.
const maxUpscale = 16

// RenderResult is a rendered PNG.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Min and Max are the value range found in the source data.
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// RenderOptions control how float data becomes pixels.
type RenderOptions struct {
	// Upscale enlarges every pixel to an Upscale x Upscale block (nearest
	// neighbour). Values below 2 keep the native size.
	Upscale int

	// White is the value drawn as full intensity. Zero means the data's own
	// maximum.
	White float32
}

// RenderPlane draws a 2-d response plane as 8-bit grayscale. Values at or
// below zero are black.
func RenderPlane(plane ndarray.View[float32], opts RenderOptions) (*RenderResult, error) {
	if plane.NDim() != 2 {
		return nil, fmt.Errorf("plane must be 2-d, got %d-d", plane.NDim())
	}
	h, w := plane.Dim(0), plane.Dim(1)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("plane is empty")
	}

	lo, hi := valueRange(plane)
	white := opts.White
	if white <= 0 {
		white = hi
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	if white > 0 {
		for y := 0; y < h; y++ {
			for x, v := range plane.Row(y) {
				img.Pix[y*img.Stride+x] = toByte(v / white)
			}
		}
	}

	res, err := encodeResult(upscale(img, opts.Upscale))
	if err != nil {
		return nil, err
	}
	res.Min, res.Max = lo, hi
	return res, nil
}

// RenderOrientationMap colours every pixel by its strongest orientation:
// hue follows the angle (0 and 180 degrees meet at red), brightness the
// response relative to the strongest pixel in the map.
//
// out holds len(angles) planes per phase, as produced by gabor.Compute;
// the phases of each orientation are summed.
func RenderOrientationMap(out ndarray.View[float32], angles []float64, opts RenderOptions) (*RenderResult, error) {
	n := len(angles)
	if out.NDim() != 3 {
		return nil, fmt.Errorf("response must be 3-d, got %d-d", out.NDim())
	}
	if n == 0 || out.Dim(0)%n != 0 {
		return nil, fmt.Errorf("%d planes do not hold %d orientations", out.Dim(0), n)
	}
	phases := out.Dim(0) / n
	h, w := out.Dim(1), out.Dim(2)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("response is empty")
	}

	best := make([]int, w*h)
	strength := make([]float32, w*h)
	var peak float32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			for o := 0; o < n; o++ {
				var s float32
				for p := 0; p < phases; p++ {
					s += out.At(p*n+o, y, x)
				}
				if s > strength[i] {
					strength[i], best[i] = s, o
				}
			}
			peak = max(peak, strength[i])
		}
	}

	white := opts.White
	if white <= 0 {
		white = peak
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range strength {
		v := 0.0
		if white > 0 {
			v = math.Min(float64(strength[i]/white), 1)
		}
		hue := math.Mod(2*angles[best[i]], 360)
		r, g, b := colorful.Hsv(hue, 1, v).Clamped().RGB255()
		img.SetRGBA(i%w, i/w, color.RGBA{R: r, G: g, B: b, A: 255})
	}

	res, err := encodeResult(upscale(img, opts.Upscale))
	if err != nil {
		return nil, err
	}
	res.Max = peak
	return res, nil
}

// RenderFilterBank lays the filters of a (planes, dim, dim) bank side by
// side with a one pixel gap. Mid gray is zero; each filter is scaled by the
// largest coefficient magnitude in the bank.
func RenderFilterBank(bank ndarray.View[int32], opts RenderOptions) (*RenderResult, error) {
	if bank.NDim() != 3 || bank.Dim(0) == 0 {
		return nil, fmt.Errorf("filter bank must be (planes, dim, dim), got %v", bank.Dims)
	}
	planes, rows, cols := bank.Dim(0), bank.Dim(1), bank.Dim(2)

	var peak int32
	lo, hi := int32(math.MaxInt32), int32(math.MinInt32)
	for _, c := range bank.Values() {
		lo, hi = min(lo, c), max(hi, c)
		if c < 0 {
			c = -c
		}
		peak = max(peak, c)
	}

	width := planes*(cols+1) - 1
	img := image.NewGray(image.Rect(0, 0, width, rows))
	for p := 0; p < planes; p++ {
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				v := float32(0.5)
				if peak > 0 {
					v = 0.5 + 0.5*float32(bank.At(p, y, x))/float32(peak)
				}
				img.SetGray(p*(cols+1)+x, y, color.Gray{Y: toByte(v)})
			}
		}
	}

	res, err := encodeResult(upscale(img, opts.Upscale))
	if err != nil {
		return nil, err
	}
	res.Min, res.Max = float32(lo), float32(hi)
	return res, nil
}

func valueRange(plane ndarray.View[float32]) (lo, hi float32) {
	lo, hi = math.MaxFloat32, -math.MaxFloat32
	for y := 0; y < plane.Dim(0); y++ {
		for _, v := range plane.Row(y) {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func upscale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	factor = min(factor, maxUpscale)
	b := img.Bounds()
	return transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
}

func encodeResult(img image.Image) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
