// Package coords defines the coordinate types used by coordex and the
// conversion of degrees/minutes/seconds values into decimal degrees.
package coords

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 latitude, longitude pair in decimal degrees.
type Coordinate struct {
	// Latitude in decimal degrees, positive north of the equator.
	Latitude float64 `json:"latitude"`
	// Longitude in decimal degrees, positive east of Greenwich.
	Longitude float64 `json:"longitude"`
}

// Point returns c as an orb.Point. Note the longitude, latitude ordering.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

// DMS is an angle expressed as degrees, minutes and seconds plus the
// hemisphere reference it was recorded with (one of "N", "S", "E", "W").
type DMS struct {
	Degrees float64
	Minutes float64
	Seconds float64
	Ref     string
}

// NewDMS returns a DMS from a (degrees, minutes, seconds) triple, which is how
// EXIF GPS tags store them.
func NewDMS(values [3]float64, ref string) DMS {

	return DMS{
		Degrees: values[0],
		Minutes: values[1],
		Seconds: values[2],
		Ref:     ref,
	}
}

// Decimal returns d in signed decimal degrees. Southern and western
// references yield negative values.
func (d DMS) Decimal() float64 {

	decimal := d.Degrees + d.Minutes/60 + d.Seconds/3600

	switch d.Ref {
	case "S", "W":
		decimal = -decimal
	default:
		// pass
	}

	return decimal
}

// Decimal is a convenience wrapper for NewDMS(values, ref).Decimal().
func Decimal(values [3]float64, ref string) float64 {
	return NewDMS(values, ref).Decimal()
}
