package geom

import (
	"math"
	"testing"
)

func TestVecArithmetic(t *testing.T) {
	a := Vec{3, 4}
	b := Vec{1, -2}

	if got := a.Add(b); got != (Vec{4, 2}) {
		t.Errorf("Add = %v, want {4 2}", got)
	}
	if got := a.Sub(b); got != (Vec{2, 6}) {
		t.Errorf("Sub = %v, want {2 6}", got)
	}
	if got := a.Scale(0.5); got != (Vec{1.5, 2}) {
		t.Errorf("Scale = %v, want {1.5 2}", got)
	}
	if got := a.Len(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := a.Dist(Vec{0, 0}); math.Abs(got-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", got)
	}
}

func TestRectOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, 0},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, 0},
		{"partial", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, 25},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 2, 3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RectOverlap(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RectOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	if !r.Contains(Vec{10, 10}) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(Vec{15, 12}) {
		t.Error("right edge should be outside")
	}
	if c := r.Centre(); c != (Vec{12.5, 12.5}) {
		t.Errorf("Centre = %v", c)
	}
}
