package utils

import (
	"math"
	"testing"
)

func TestHaversineSamePoint(t *testing.T) {
	d := Haversine(43.6591, -70.2568, 43.6591, -70.2568)
	if d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversinePortlandToBoston(t *testing.T) {
	// Portland, ME (43.6591, -70.2568) to Boston (42.3601, -71.0589) ~ 99 miles
	d := Haversine(43.6591, -70.2568, 42.3601, -71.0589)
	if math.Abs(d-99) > 5 {
		t.Errorf("expected ~99 miles, got %f", d)
	}
}

func TestHaversineAntipodal(t *testing.T) {
	// From (0,0) to (0,180) ~ half circumference ~ 12,437 miles
	d := Haversine(0, 0, 0, 180)
	if math.Abs(d-12437) > 50 {
		t.Errorf("expected ~12437 miles, got %f", d)
	}
}

func TestLngRanges(t *testing.T) {
	tests := []struct {
		name  string
		lng   float64
		delta float64
		want  [][2]float64
	}{
		{"inside", -70, 0.5, [][2]float64{{-70.5, -69.5}}},
		{"crosses east", 179.75, 0.5, [][2]float64{{179.25, 180}, {-180, -179.75}}},
		{"crosses west", -179.75, 0.5, [][2]float64{{-180, -179.25}, {179.75, 180}}},
		{"whole globe", 10, 180, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LngRanges(tt.lng, tt.delta)
			if len(got) != len(tt.want) {
				t.Fatalf("LngRanges(%v, %v) = %v, want %v", tt.lng, tt.delta, got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i][0]-tt.want[i][0]) > 1e-9 || math.Abs(got[i][1]-tt.want[i][1]) > 1e-9 {
					t.Errorf("range %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
