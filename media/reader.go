package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kisszoltan/coordex/common"
	"github.com/kisszoltan/coordex/coords"
	"github.com/kisszoltan/coordex/projection"
	"gocloud.dev/blob"
)

// type Photo is the record produced for a single successfully processed image.
type Photo struct {
	// The path of the image, for display purposes.
	Path string `json:"path"`
	// The key the image was opened with.
	Key string `json:"key"`
	// The WGS84 position of the image.
	Coordinate coords.Coordinate `json:"coordinate"`
	// The position of the image projected on to the EOV grid.
	EOV projection.Point `json:"eov"`
	// The time the image was taken. Zero if the image does not say.
	Taken time.Time `json:"taken,omitempty"`
	// The SHA-1 hash of the image. Empty unless Reader.Fingerprint is true.
	Fingerprint string `json:"fingerprint,omitempty"`
	// Perceptual hashes of the image keyed by approach ("avg", "diff"). Empty unless
	// Reader.ImageHash is true and the image could be decoded.
	ImageHashes map[string]string `json:"imagehashes,omitempty"`
}

// ImageError is returned when an image does not carry the metadata needed to
// locate it. Err is always one of ErrNoExif or ErrNoCoordinates.
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string {

	switch {
	case errors.Is(e.Err, ErrNoExif):
		return fmt.Sprintf("The image (%s) has no EXIF information", e.Path)
	case errors.Is(e.Err, ErrNoCoordinates):
		return fmt.Sprintf("No coordinates in image %s", e.Path)
	default:
		return fmt.Sprintf("Invalid image %s, %v", e.Path, e.Err)
	}
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// ProjectFunc converts a WGS84 latitude, longitude pair in to a projected point.
type ProjectFunc func(float64, float64) (projection.Point, error)

// Reader reads images and derives Photo records from them.
type Reader struct {
	// The function used to open images by key.
	Open common.OpenFunc
	// An optional path prepended to keys in messages and Photo.Path.
	Root string
	// The Source used to extract metadata. Defaults to NewExifSource().
	Source Source
	// The function used to compute Photo.EOV. Defaults to projection.WGS84ToEOV.
	Project ProjectFunc
	// If true each Photo is assigned the SHA-1 hash of its image.
	Fingerprint bool
	// If true each Photo is assigned the perceptual hashes of its image.
	ImageHash bool
}

// NewReader returns a Reader for the images in bucket using the default Source and ProjectFunc.
func NewReader(bucket *blob.Bucket, root string) *Reader {

	r := &Reader{
		Open:    common.BucketOpener(bucket),
		Root:    root,
		Source:  NewExifSource(),
		Project: projection.WGS84ToEOV,
	}

	return r
}

// NewDirectoryReader returns a Reader for the files in the local directory dir, keyed
// by file name, using the default Source and ProjectFunc.
func NewDirectoryReader(dir string) *Reader {

	r := &Reader{
		Open:    common.DirectoryOpener(dir),
		Root:    dir,
		Source:  NewExifSource(),
		Project: projection.WGS84ToEOV,
	}

	return r
}

// Read opens the image stored at key and returns its Photo record. Images
// without EXIF data or GPS coordinates yield an *ImageError.
func (r *Reader) Read(ctx context.Context, key string) (*Photo, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	path := r.path(key)

	logger := slog.Default()
	logger = logger.With("path", path)

	md, err := r.extract(ctx, key)

	if err != nil {

		if errors.Is(err, ErrNoExif) || errors.Is(err, ErrNoCoordinates) {
			return nil, &ImageError{Path: path, Err: err}
		}

		return nil, fmt.Errorf("Failed to read metadata for %s, %w", path, err)
	}

	project := r.Project

	if project == nil {
		project = projection.WGS84ToEOV
	}

	// Computed for every image; only persisted when properties are requested.
	eov, err := project(md.Coordinate.Latitude, md.Coordinate.Longitude)

	if err != nil {
		return nil, fmt.Errorf("Failed to project coordinates for %s, %w", path, err)
	}

	photo := &Photo{
		Path:       path,
		Key:        key,
		Coordinate: md.Coordinate,
		EOV:        eov,
		Taken:      md.Taken,
	}

	if r.Fingerprint {

		fp, err := common.FingerprintFile(ctx, r.Open, key)

		if err != nil {
			return nil, fmt.Errorf("Failed to fingerprint %s, %w", path, err)
		}

		photo.Fingerprint = fp
	}

	if r.ImageHash {

		photo.ImageHashes = make(map[string]string)

		hashes, err := common.ImageHashes(ctx, r.Open, key)

		if err != nil {
			logger.Debug("Failed to derive image hashes", "error", err)
		}

		for _, h := range hashes {
			photo.ImageHashes[h.Approach] = h.Hash
		}
	}

	logger.Debug("Read image", "latitude", md.Coordinate.Latitude, "longitude", md.Coordinate.Longitude, "eov_x", eov.X, "eov_y", eov.Y)
	return photo, nil
}

// Coordinates returns the WGS84 position of the image stored at key.
func (r *Reader) Coordinates(ctx context.Context, key string) (coords.Coordinate, error) {

	photo, err := r.Read(ctx, key)

	if err != nil {
		return coords.Coordinate{}, err
	}

	return photo.Coordinate, nil
}

func (r *Reader) extract(ctx context.Context, key string) (*Metadata, error) {

	im_fh, err := r.Open(ctx, key)

	if err != nil {
		return nil, err
	}

	defer im_fh.Close()

	src := r.Source

	if src == nil {
		src = NewExifSource()
	}

	return src.Extract(ctx, im_fh)
}

func (r *Reader) path(key string) string {

	if r.Root == "" {
		return key
	}

	return filepath.Join(r.Root, key)
}
