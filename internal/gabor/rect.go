package gabor

import (
	"fmt"
	"image"
)

// Rect is a half-open axis-aligned box in pixel coordinates.
//
// Left and Top are inclusive, Right and Bottom exclusive, matching
// image.Rectangle. A Rect is only meaningful together with the coordinate
// space it was computed for: input (working buffer) or output (response
// planes).
type Rect struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// RectFromImage converts an image.Rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// Image converts back to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Area returns the pixel count, zero for inverted boxes.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the box contains no pixels.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Valid reports whether Left <= Right and Top <= Bottom.
func (r Rect) Valid() bool { return r.Left <= r.Right && r.Top <= r.Bottom }

// Contains reports whether (x, y) lies inside the box.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// In reports whether r lies entirely inside o.
func (r Rect) In(o Rect) bool {
	return r.Left >= o.Left && r.Top >= o.Top && r.Right <= o.Right && r.Bottom <= o.Bottom
}

// Intersect returns the overlap of r and o. The result may be empty but is
// always Valid.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}

// Inset shrinks the box by n on every side; negative n grows it.
func (r Rect) Inset(n int) Rect {
	return Rect{Left: r.Left + n, Top: r.Top + n, Right: r.Right - n, Bottom: r.Bottom - n}
}

// Translate shifts the box by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}
