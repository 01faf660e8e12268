// Package export converts the photos read from a directory in to a point
// feature collection and writes it to disk as a shapefile and, optionally, GeoJSON.
package export

import (
	"path/filepath"
	"time"

	"github.com/kisszoltan/coordex/media"
	"github.com/paulmach/orb/geojson"
)

// The names of the optional per-photo properties, in the order they are written.
const (
	PropertyName      = "name"
	PropertyTaken     = "taken"
	PropertyLatitude  = "lat"
	PropertyLongitude = "lng"
	PropertyEOVX      = "eov_x"
	PropertyEOVY      = "eov_y"
	PropertySHA1      = "sha1"
	PropertyAvgHash   = "ahash"
	PropertyDiffHash  = "dhash"
)

// PhotoProperties is the ordered list of properties assigned to each feature when
// properties are enabled.
var PhotoProperties = []string{
	PropertyName,
	PropertyTaken,
	PropertyLatitude,
	PropertyLongitude,
	PropertyEOVX,
	PropertyEOVY,
	PropertySHA1,
	PropertyAvgHash,
	PropertyDiffHash,
}

// type CRS describes the coordinate reference system of a Collection.
type CRS struct {
	// The authority code, for example "EPSG:4326".
	Name string
	// The URN used in a GeoJSON "crs" member.
	URN string
	// The ESRI flavoured WKT written to a shapefile's .prj file.
	WKT string
}

// WGS84 returns the CRS for EPSG:4326.
func WGS84() *CRS {

	return &CRS{
		Name: "EPSG:4326",
		URN:  "urn:ogc:def:crs:OGC:1.3:CRS84",
		WKT:  `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
	}
}

// Collection is a set of point features, one per photo, in the order the photos were read.
type Collection struct {
	// The coordinate reference system of the features' geometries.
	CRS *CRS
	// The features themselves.
	Features *geojson.FeatureCollection
	// The names of the properties assigned to every feature. Empty if properties are disabled.
	Properties []string
}

// NewCollection returns a WGS84 Collection with a point feature for each of photos. If
// with_properties is true each feature is assigned the properties listed in PhotoProperties.
func NewCollection(photos []*media.Photo, with_properties bool) *Collection {

	fc := geojson.NewFeatureCollection()

	for _, ph := range photos {

		f := geojson.NewFeature(ph.Coordinate.Point())

		if with_properties {

			taken := ""

			if !ph.Taken.IsZero() {
				taken = ph.Taken.Format(time.RFC3339)
			}

			f.Properties[PropertyName] = filepath.Base(ph.Path)
			f.Properties[PropertyTaken] = taken
			f.Properties[PropertyLatitude] = ph.Coordinate.Latitude
			f.Properties[PropertyLongitude] = ph.Coordinate.Longitude
			f.Properties[PropertyEOVX] = ph.EOV.X
			f.Properties[PropertyEOVY] = ph.EOV.Y
			f.Properties[PropertySHA1] = ph.Fingerprint
			f.Properties[PropertyAvgHash] = ph.ImageHashes["avg"]
			f.Properties[PropertyDiffHash] = ph.ImageHashes["diff"]
		}

		fc.Append(f)
	}

	c := &Collection{
		CRS:      WGS84(),
		Features: fc,
	}

	if with_properties {
		c.Properties = PhotoProperties
	}

	return c
}

// Len returns the number of features in c.
func (c *Collection) Len() int {

	if c == nil || c.Features == nil {
		return 0
	}

	return len(c.Features.Features)
}
