// Package projection converts WGS84 coordinates into planar reference systems
// using the PROJ library.
package projection

import (
	"fmt"

	"github.com/twpayne/go-proj/v10"
)

const (
	// WGS84 is the geographic CRS that EXIF GPS coordinates are recorded in.
	WGS84 = "EPSG:4326"
	// EOV is the Hungarian national grid (HD72 / EOV).
	EOV = "EPSG:23700"
)

// Point is a pair of coordinates in a projected CRS, in the axis order that
// CRS's authority defines. For EOV that is (easting, northing).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform converts (a, b) from the source CRS to the target CRS. Inputs and
// outputs follow the authority axis order of each CRS so for EPSG:4326 a is the
// latitude and b the longitude. A new transformation is created for every call.
func Transform(source string, target string, a float64, b float64) (Point, error) {

	pj, err := proj.NewCRSToCRS(source, target, nil)

	if err != nil {
		return Point{}, fmt.Errorf("Failed to create transformation from %s to %s, %w", source, target, err)
	}

	defer pj.Destroy()

	coord, err := pj.Forward(proj.NewCoord(a, b, 0, 0))

	if err != nil {
		return Point{}, fmt.Errorf("Failed to transform %f,%f from %s to %s, %w", a, b, source, target, err)
	}

	pt := Point{
		X: coord.X(),
		Y: coord.Y(),
	}

	return pt, nil
}

// WGS84ToEOV projects a WGS84 latitude, longitude pair on to the EOV grid.
func WGS84ToEOV(latitude float64, longitude float64) (Point, error) {
	return Transform(WGS84, EOV, latitude, longitude)
}
