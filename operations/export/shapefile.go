package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/kisszoltan/coordex/media"
	"github.com/paulmach/orb"
)

// ErrEmptyCollection is returned when there are no features to write.
var ErrEmptyCollection = errors.New("Cannot write an empty feature collection")

// DefaultFilename is the shapefile name used when ShapefileOptions.Filename is empty.
const DefaultFilename = "_coordex.shp"

// Iterator is the interface for anything that yields photos one at a time, for
// example a gather.Walker.
type Iterator interface {
	// Next advances to the next photo, returning false when done or on error.
	Next(context.Context) bool
	// Photo returns the current photo.
	Photo() *media.Photo
	// Err returns the error that stopped iteration, if any.
	Err() error
}

// Drain reads it to completion and returns every photo in order. The first
// error encountered is returned as-is.
func Drain(ctx context.Context, it Iterator) ([]*media.Photo, error) {

	photos := make([]*media.Photo, 0)

	for it.Next(ctx) {
		photos = append(photos, it.Photo())
	}

	err := it.Err()

	if err != nil {
		return nil, err
	}

	return photos, nil
}

// ShapefileOptions defines configuration options for CreateShapefile.
type ShapefileOptions struct {
	// The directory to write to. It is created if necessary. Defaults to the current directory.
	Directory string
	// The name of the shapefile. Defaults to DefaultFilename.
	Filename string
	// If true per-photo properties are written as DBF columns.
	Properties bool
	// If true a GeoJSON copy of the collection is written next to the shapefile.
	GeoJSON bool
	// Where the confirmation message is written. Defaults to os.Stdout.
	Stdout io.Writer
}

// CreateShapefile drains it, writes the resulting collection to Directory/Filename and
// prints a confirmation message. Nothing is written, and Directory is not created, if
// draining fails or there are no photos. It returns the path of the new shapefile.
func CreateShapefile(ctx context.Context, it Iterator, opts *ShapefileOptions) (string, error) {

	if opts == nil {
		opts = &ShapefileOptions{}
	}

	dir := opts.Directory

	if dir == "" {
		dir = "."
	}

	fname := opts.Filename

	if fname == "" {
		fname = DefaultFilename
	}

	stdout := opts.Stdout

	if stdout == nil {
		stdout = os.Stdout
	}

	photos, err := Drain(ctx, it)

	if err != nil {
		return "", err
	}

	c := NewCollection(photos, opts.Properties)

	if c.Len() == 0 {
		return "", ErrEmptyCollection
	}

	err = os.MkdirAll(dir, 0755)

	if err != nil {
		return "", fmt.Errorf("Failed to create %s, %w", dir, err)
	}

	shp_path := filepath.Join(dir, fname)

	err = WriteShapefile(ctx, c, shp_path)

	if err != nil {
		return "", err
	}

	if opts.GeoJSON {

		geojson_name := strings.TrimSuffix(fname, filepath.Ext(fname)) + ".geojson"

		_, err := WriteGeoJSON(ctx, c, dir, geojson_name)

		if err != nil {
			return "", err
		}
	}

	fmt.Fprintf(stdout, "Shapefile saved as %s\n", shp_path)
	return shp_path, nil
}

// WriteShapefile writes c to path as a POINT shapefile (.shp, .shx and .dbf) along with
// .prj and .cpg sidecar files. Each record has a FID attribute plus one column per
// entry in c.Properties.
func WriteShapefile(ctx context.Context, c *Collection, path string) error {

	if c.Len() == 0 {
		return ErrEmptyCollection
	}

	base := path

	if strings.EqualFold(filepath.Ext(path), ".shp") {
		base = path[0 : len(path)-4]
	}

	logger := slog.Default()
	logger = logger.With("path", base+".shp")

	fields, err := dbfFields(c.Properties)

	if err != nil {
		return err
	}

	wr, err := shp.Create(base+".shp", shp.POINT)

	if err != nil {
		return fmt.Errorf("Failed to create %s.shp, %w", base, err)
	}

	err = wr.SetFields(fields)

	if err != nil {
		wr.Close()
		return fmt.Errorf("Failed to set fields for %s.shp, %w", base, err)
	}

	err = writeRecords(ctx, wr, fields, c)

	wr.Close()

	if err != nil {
		return err
	}

	err = renameDBF(base)

	if err != nil {
		return err
	}

	err = os.WriteFile(base+".prj", []byte(c.CRS.WKT), 0644)

	if err != nil {
		return fmt.Errorf("Failed to write %s.prj, %w", base, err)
	}

	err = os.WriteFile(base+".cpg", []byte("UTF-8"), 0644)

	if err != nil {
		return fmt.Errorf("Failed to write %s.cpg, %w", base, err)
	}

	logger.Debug("Wrote shapefile", "count", c.Len())
	return nil
}

func dbfFields(properties []string) ([]shp.Field, error) {

	fields := []shp.Field{
		shp.NumberField("FID", 10),
	}

	for _, name := range properties {

		switch name {
		case PropertyName:
			fields = append(fields, shp.StringField(name, 254))
		case PropertyTaken:
			fields = append(fields, shp.StringField(name, 25))
		case PropertyLatitude, PropertyLongitude:
			fields = append(fields, shp.FloatField(name, 19, 11))
		case PropertyEOVX, PropertyEOVY:
			fields = append(fields, shp.FloatField(name, 19, 3))
		case PropertySHA1:
			fields = append(fields, shp.StringField(name, 40))
		case PropertyAvgHash, PropertyDiffHash:
			fields = append(fields, shp.StringField(name, 32))
		default:
			return nil, fmt.Errorf("Unsupported property '%s'", name)
		}
	}

	return fields, nil
}

func writeRecords(ctx context.Context, wr *shp.Writer, fields []shp.Field, c *Collection) error {

	for _, f := range c.Features.Features {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// pass
		}

		pt, ok := f.Geometry.(orb.Point)

		if !ok {
			return fmt.Errorf("Unsupported geometry type %T", f.Geometry)
		}

		row := int(wr.Write(&shp.Point{X: pt.Lon(), Y: pt.Lat()}))

		values := make([]any, len(fields))
		values[0] = row

		for i, name := range c.Properties {
			values[i+1] = f.Properties[name]
		}

		for i, v := range values {

			err := wr.WriteAttribute(row, i, formatAttribute(fields[i], v))

			if err != nil {
				return fmt.Errorf("Failed to write %s for record %d, %w", fields[i], row, err)
			}
		}
	}

	return nil
}

// formatAttribute renders v as a space padded DBF value for field. Character
// values are left aligned and truncated to fit on a character boundary, numeric
// values right aligned.
func formatAttribute(field shp.Field, v any) string {

	size := int(field.Size)
	str := ""

	switch field.Fieldtype {
	case 'N', 'F':

		switch n := v.(type) {
		case int:
			str = strconv.Itoa(n)
		case float64:
			str = strconv.FormatFloat(n, 'f', int(field.Precision), 64)
		default:
			// pass
		}

		str = truncate(str, size)
		return strings.Repeat(" ", size-len(str)) + str

	default:

		if v != nil {
			str = fmt.Sprintf("%v", v)
		}

		str = truncate(str, size)
		return str + strings.Repeat(" ", size-len(str))
	}
}

// truncate returns the longest prefix of str that fits in size bytes without
// splitting a multibyte character.
func truncate(str string, size int) string {

	if len(str) <= size {
		return str
	}

	i := size

	for i > 0 && !utf8.RuneStart(str[i]) {
		i -= 1
	}

	return str[0:i]
}

// renameDBF moves the attribute table go-shp writes as "<base>dbf" to "<base>.dbf".
func renameDBF(base string) error {

	misnamed := base + "dbf"

	_, err := os.Stat(misnamed)

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("Failed to stat %s, %w", misnamed, err)
	}

	err = os.Rename(misnamed, base+".dbf")

	if err != nil {
		return fmt.Errorf("Failed to rename %s, %w", misnamed, err)
	}

	return nil
}
