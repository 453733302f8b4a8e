package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabeledBox is a rectangle to outline, in source image coordinates.
type LabeledBox struct {
	Label string          `json:"label"`
	Rect  image.Rectangle `json:"-"`
}

// BoxOverlay outlines each box on a copy of img and labels it at its top
// left corner. Boxes may extend past the image; only the visible part is
// drawn. An unparseable colour falls back to semi-transparent red.
func BoxOverlay(img image.Image, boxes []LabeledBox, colorHex string) (*RenderResult, error) {
	bounds := img.Bounds()

	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = color.RGBA{255, 0, 0, 200}
	}

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, b := range boxes {
		r := b.Rect.Canon()
		if r.Empty() {
			continue
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			setVisible(result, x, r.Min.Y, lineColor)
			setVisible(result, x, r.Max.Y-1, lineColor)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setVisible(result, r.Min.X, y, lineColor)
			setVisible(result, r.Max.X-1, y, lineColor)
		}
		if b.Label != "" {
			drawLabel(result, r.Min.X+2, r.Min.Y+2, b.Label, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
		}
	}

	return encodeResult(result)
}

func setVisible(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel writes text in the 7x13 bitmap face on a filled background
// whose top left corner is (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	box := image.Rect(x-1, y-1, x+width+1, y+height).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
