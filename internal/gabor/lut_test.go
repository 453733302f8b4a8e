package gabor

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

func TestLUTScalar(t *testing.T) {
	tests := []struct {
		bins int
		gain float32
		want float32
	}{
		{256, 1, 255},
		{257, 256, 1},
		{1, 1, 0},
		{256, 0, 0},
	}
	for _, tt := range tests {
		if got := LUTScalar(tt.bins, tt.gain); got != tt.want {
			t.Errorf("LUTScalar(%d, %v): got %v, want %v", tt.bins, tt.gain, got, tt.want)
		}
	}
}

func TestNewPostProcLUT_Sigmoid(t *testing.T) {
	lut, err := NewPostProcLUT(PostProcSigmoid, 64, 10, 0.5, 0.1, 0.9)
	if err != nil {
		t.Fatalf("NewPostProcLUT failed: %v", err)
	}
	if lut.Len() != 64 {
		t.Fatalf("length: got %d, want 64", lut.Len())
	}
	prev := float32(-1)
	for i, v := range lut.Data {
		if v < 0.1 || v > 0.9 {
			t.Errorf("entry %d = %v outside [0.1, 0.9]", i, v)
		}
		if v < prev {
			t.Errorf("entry %d = %v decreases from %v", i, v, prev)
		}
		prev = v
	}
	if lut.Data[0] > 0.11 || lut.Data[63] < 0.89 {
		t.Errorf("ends: got %v and %v", lut.Data[0], lut.Data[63])
	}
}

func TestNewPostProcLUT_Threshold(t *testing.T) {
	lut, err := NewPostProcLUT(PostProcThreshold, 5, 0, 0.5, 0, 1)
	if err != nil {
		t.Fatalf("NewPostProcLUT failed: %v", err)
	}
	want := []float32{0, 0, 1, 1, 1}
	for i, w := range want {
		if lut.Data[i] != w {
			t.Errorf("entry %d: got %v, want %v", i, lut.Data[i], w)
		}
	}
}

func TestNewPostProcLUT_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method PostProcMethod
		bins   int
		lo, hi float32
	}{
		{"one bin", PostProcSigmoid, 1, 0, 1},
		{"range above one", PostProcSigmoid, 16, 0, 1.5},
		{"inverted range", PostProcThreshold, 16, 0.8, 0.2},
		{"raw has no table", PostProcRaw, 16, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostProcLUT(tt.method, tt.bins, 10, 0.5, tt.lo, tt.hi)
			if !errors.Is(err, ErrLUT) {
				t.Errorf("got %v, want ErrLUT", err)
			}
		})
	}
}

func TestCheckLUT(t *testing.T) {
	good := ndarray.Make[float32](8)
	flat := ndarray.Make[float32](2, 4)
	empty := ndarray.Make[float32](0)
	nan := ndarray.Make[float32](3)
	nan.Data[1] = float32(math.NaN())

	tests := []struct {
		name    string
		lut     *ndarray.View[float32]
		scalar  float32
		wantErr bool
	}{
		{"valid", &good, 1, false},
		{"nil", nil, 1, true},
		{"two dimensional", &flat, 1, true},
		{"empty", &empty, 1, true},
		{"zero scalar", &good, 0, true},
		{"nan entry", &nan, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLUT(tt.lut, tt.scalar)
			if (err != nil) != tt.wantErr {
				t.Errorf("got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
