package coords

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDecimal(t *testing.T) {

	tests := []struct {
		name   string
		values [3]float64
		ref    string
		want   float64
	}{
		{"whole degrees north", [3]float64{47, 0, 0}, "N", 47},
		{"whole degrees east", [3]float64{19, 0, 0}, "E", 19},
		{"minutes", [3]float64{47, 30, 0}, "N", 47.5},
		{"seconds", [3]float64{0, 0, 36}, "N", 0.01},
		{"south", [3]float64{33, 51, 54}, "S", -(33 + 51.0/60 + 54.0/3600)},
		{"west", [3]float64{122, 25, 9.6}, "W", -(122 + 25.0/60 + 9.6/3600)},
		{"unknown ref is positive", [3]float64{10, 0, 0}, "", 10},
		{"lower case ref is not negated", [3]float64{10, 0, 0}, "s", 10},
	}

	for _, tc := range tests {

		t.Run(tc.name, func(t *testing.T) {

			got := Decimal(tc.values, tc.ref)

			if math.Abs(got-tc.want) > epsilon {
				t.Fatalf("Decimal(%v, %q) = %v, want %v", tc.values, tc.ref, got, tc.want)
			}
		})
	}
}

func TestWholeDegreesRoundTrip(t *testing.T) {

	for d := 0; d <= 180; d++ {

		got := NewDMS([3]float64{float64(d), 0, 0}, "N").Decimal()

		if got != float64(d) {
			t.Fatalf("expected %d, got %v", d, got)
		}

		got = NewDMS([3]float64{float64(d), 15, 45}, "S").Decimal()
		want := -(float64(d) + 15.0/60 + 45.0/3600)

		if math.Abs(got-want) > epsilon {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCoordinatePoint(t *testing.T) {

	c := Coordinate{Latitude: 47.5, Longitude: 19.0}
	pt := c.Point()

	if pt.Lon() != 19.0 || pt.Lat() != 47.5 {
		t.Fatalf("expected (19, 47.5), got %v", pt)
	}
}
