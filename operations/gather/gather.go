// Package gather enumerates the images in a directory, ordered by creation time,
// and reads their GPS coordinates one at a time.
package gather

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/djherbis/times"
	"github.com/kisszoltan/coordex/coords"
	"github.com/kisszoltan/coordex/media"
)

// type Entry is a single item in a directory, used to establish processing order.
type Entry struct {
	// The name of the item relative to its directory.
	Name string `json:"name"`
	// The path of the item (the directory joined with Name).
	Path string `json:"path"`
	// The creation time of the item. Zero if it could not be determined.
	Created time.Time `json:"created"`
}

// CreationTime returns the platform's notion of when path was created: the birth
// time on Windows and the inode change time elsewhere, falling back to the
// modification time when neither is available.
func CreationTime(path string) (time.Time, error) {

	ts, err := times.Stat(path)

	if err != nil {
		return time.Time{}, fmt.Errorf("Failed to stat %s, %w", path, err)
	}

	if runtime.GOOS == "windows" && ts.HasBirthTime() {
		return ts.BirthTime(), nil
	}

	if ts.HasChangeTime() {
		return ts.ChangeTime(), nil
	}

	return ts.ModTime(), nil
}

// SortedEntries returns every direct child of dir sorted by ascending creation time.
// Children with equal creation times keep their name order.
func SortedEntries(dir string) ([]*Entry, error) {

	dir_entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("Failed to read directory %s, %w", dir, err)
	}

	entries := make([]*Entry, len(dir_entries))

	for i, e := range dir_entries {

		path := filepath.Join(dir, e.Name())

		created, err := CreationTime(path)

		if err != nil {
			slog.Debug("Failed to derive creation time, sorting first", "path", path, "error", err)
		}

		entries[i] = &Entry{
			Name:    e.Name(),
			Path:    path,
			Created: created,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.Before(entries[j].Created)
	})

	return entries, nil
}

// WalkerOptions defines configuration options for a Walker.
type WalkerOptions struct {
	// An optional ProjectFunc assigned to the Walker's media.Reader.
	Project media.ProjectFunc
	// An optional media.Source assigned to the Walker's media.Reader.
	Source media.Source
	// If true each media.Photo is assigned the SHA-1 hash of its image.
	Fingerprint bool
	// If true each media.Photo is assigned the perceptual hashes of its image.
	ImageHash bool
}

// Walker reads the images in a directory one at a time, in creation order. It
// stops permanently at the first error. A Walker is not safe for concurrent use.
type Walker struct {
	reader  *media.Reader
	entries []*Entry
	index   int
	photo   *media.Photo
	err     error
}

// NewWalker lists and sorts the contents of dir and returns a Walker for them. No
// image is read until Next is called.
func NewWalker(ctx context.Context, dir string, opts *WalkerOptions) (*Walker, error) {

	if opts == nil {
		opts = &WalkerOptions{}
	}

	entries, err := SortedEntries(dir)

	if err != nil {
		return nil, err
	}

	r := media.NewDirectoryReader(dir)
	r.Fingerprint = opts.Fingerprint
	r.ImageHash = opts.ImageHash

	if opts.Project != nil {
		r.Project = opts.Project
	}

	if opts.Source != nil {
		r.Source = opts.Source
	}

	w := &Walker{
		reader:  r,
		entries: entries,
	}

	return w, nil
}

// Len returns the number of entries the Walker will visit.
func (w *Walker) Len() int {
	return len(w.entries)
}

// Next reads the next entry. It returns false when every entry has been read or
// an error occurred, in which case Err returns that error.
func (w *Walker) Next(ctx context.Context) bool {

	w.photo = nil

	if w.err != nil || w.index >= len(w.entries) {
		return false
	}

	select {
	case <-ctx.Done():
		w.err = ctx.Err()
		return false
	default:
		// pass
	}

	e := w.entries[w.index]
	w.index += 1

	logger := slog.Default()
	logger = logger.With("path", e.Path)

	logger.Debug("Process image", "created", e.Created)

	photo, err := w.reader.Read(ctx, e.Name)

	if err != nil {
		w.err = err
		return false
	}

	w.photo = photo
	return true
}

// Photo returns the record read by the most recent successful call to Next.
func (w *Walker) Photo() *media.Photo {
	return w.photo
}

// Coordinate returns the coordinate read by the most recent successful call to Next.
func (w *Walker) Coordinate() coords.Coordinate {

	if w.photo == nil {
		return coords.Coordinate{}
	}

	return w.photo.Coordinate
}

// Err returns the error, if any, that stopped iteration.
func (w *Walker) Err() error {
	return w.err
}
