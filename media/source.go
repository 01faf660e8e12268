package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kisszoltan/coordex/coords"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

var (
	// ErrNoExif is returned when an image does not contain an EXIF block.
	ErrNoExif = errors.New("no EXIF information")
	// ErrNoCoordinates is returned when an image has EXIF data but no GPS latitude or longitude.
	ErrNoCoordinates = errors.New("no coordinates")
)

// Metadata is the subset of an image's embedded metadata that coordex cares about.
type Metadata struct {
	// The GPS position the image was taken at.
	Coordinate coords.Coordinate
	// The time the image was taken, if known.
	Taken time.Time
}

// Source is the interface for extracting Metadata from the bytes of an image.
type Source interface {
	// Extract returns the Metadata for the image read from r. It returns an error
	// wrapping ErrNoExif or ErrNoCoordinates if the image has no usable position.
	Extract(context.Context, io.Reader) (*Metadata, error)
}

var register_parsers sync.Once

// ExifSource implements the Source interface using the rwcarlsen/goexif package.
type ExifSource struct{}

// NewExifSource returns a new ExifSource instance. Canon and Nikon makernote
// parsers are registered with goexif the first time this is called.
func NewExifSource() Source {

	register_parsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	s := &ExifSource{}
	return s
}

// Extract decodes the EXIF block in r and returns its GPS position and capture time.
func (s *ExifSource) Extract(ctx context.Context, r io.Reader) (*Metadata, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	x, err := exif.Decode(r)

	if x == nil {

		if err == nil {
			return nil, ErrNoExif
		}

		return nil, fmt.Errorf("%w, %v", ErrNoExif, err)
	}

	if err != nil {
		// sub-IFD errors; whatever was decoded is still usable
		slog.Debug("EXIF data decoded with errors", "error", err)
	}

	lat, err := decimalDegrees(x, exif.GPSLatitude, exif.GPSLatitudeRef)

	if err != nil {
		return nil, err
	}

	lon, err := decimalDegrees(x, exif.GPSLongitude, exif.GPSLongitudeRef)

	if err != nil {
		return nil, err
	}

	md := &Metadata{
		Coordinate: coords.Coordinate{
			Latitude:  lat,
			Longitude: lon,
		},
	}

	taken, err := x.DateTime()

	if err == nil {
		md.Taken = taken
	}

	return md, nil
}

func decimalDegrees(x *exif.Exif, value_field exif.FieldName, ref_field exif.FieldName) (float64, error) {

	value_tag, err := x.Get(value_field)

	if err != nil {
		return 0.0, missingTag(value_field, err)
	}

	ref_tag, err := x.Get(ref_field)

	if err != nil {
		return 0.0, missingTag(ref_field, err)
	}

	ref, err := ref_tag.StringVal()

	if err != nil {
		return 0.0, fmt.Errorf("Failed to read %s, %w", ref_field, err)
	}

	if value_tag.Count < 3 {
		return 0.0, fmt.Errorf("Invalid %s tag, expected 3 values but found %d", value_field, value_tag.Count)
	}

	var values [3]float64

	for i := range values {

		num, den, err := value_tag.Rat2(i)

		if err != nil {
			return 0.0, fmt.Errorf("Failed to read %s, %w", value_field, err)
		}

		if den == 0 {
			continue
		}

		values[i] = float64(num) / float64(den)
	}

	return coords.Decimal(values, ref), nil
}

func missingTag(field exif.FieldName, err error) error {

	if exif.IsTagNotPresentError(err) {
		return fmt.Errorf("%w, missing %s", ErrNoCoordinates, field)
	}

	return fmt.Errorf("Failed to read %s, %w", field, err)
}
