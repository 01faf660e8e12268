// Package coordex extracts the GPS coordinates embedded in the EXIF metadata of a directory
// of photos and writes them, ordered by file creation time, to a point shapefile.
//
// The work is split across a handful of packages: coords decodes degrees/minutes/seconds
// values, media reads EXIF metadata from a gocloud.dev/blob bucket, projection reprojects
// coordinates on to the Hungarian EOV grid, operations/gather walks a directory in creation
// order and operations/export writes shapefiles (and GeoJSON). The command line tool lives
// in cmd/coordex and its implementation in app/coordex.
package coordex
