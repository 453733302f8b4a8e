package gabor

import (
	"math"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// PlaneStats summarises one output plane inside a box.
type PlaneStats struct {
	Plane int     `json:"plane"`
	Min   float32 `json:"min"`
	Max   float32 `json:"max"`
	Mean  float64 `json:"mean"`

	// Active counts cells with a non-zero response.
	Active int `json:"active"`
}

// ResponseStats summarises every plane of out inside box (output
// coordinates). An empty box yields zero-valued stats.
func ResponseStats(out ndarray.View[float32], box Rect) []PlaneStats {
	stats := make([]PlaneStats, out.Dim(0))
	bounds := Rect{Right: out.Dim(2), Bottom: out.Dim(1)}
	box = box.Intersect(bounds)
	for p := range stats {
		st := PlaneStats{Plane: p}
		if box.Empty() {
			stats[p] = st
			continue
		}
		st.Min, st.Max = math.MaxFloat32, -math.MaxFloat32
		var sum float64
		plane := out.Plane(p)
		for y := box.Top; y < box.Bottom; y++ {
			row := plane.Row(y)
			for _, v := range row[box.Left:box.Right] {
				st.Min = min(st.Min, v)
				st.Max = max(st.Max, v)
				sum += float64(v)
				if v != 0 {
					st.Active++
				}
			}
		}
		st.Mean = sum / float64(box.Area())
		stats[p] = st
	}
	return stats
}

// OutputBox returns the output-space box Compute fills for roi.
func OutputBox(edge EdgeMode, roi Rect, filterDim int) Rect {
	if edge == Constrained {
		return Rect{Left: roi.Left, Top: roi.Top, Right: roi.Right - (filterDim - 1), Bottom: roi.Bottom - (filterDim - 1)}
	}
	return roi
}
