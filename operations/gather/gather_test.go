package gather

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kisszoltan/coordex/media"
	"github.com/kisszoltan/coordex/media/exiftest"
	"github.com/kisszoltan/coordex/projection"
)

func stubProject(lat float64, lon float64) (projection.Point, error) {
	return projection.Point{X: lon, Y: lat}, nil
}

// writeFiles writes each file in order, pausing between them so that their
// creation times differ.
func writeFiles(t *testing.T, dir string, names []string, bodies [][]byte) {

	t.Helper()

	for i, name := range names {

		if i > 0 {
			time.Sleep(50 * time.Millisecond)
		}

		err := os.WriteFile(filepath.Join(dir, name), bodies[i], 0644)

		if err != nil {
			t.Fatalf("Failed to write %s, %v", name, err)
		}
	}
}

func TestSortedEntries(t *testing.T) {

	dir := t.TempDir()

	names := []string{"c.jpg", "a.jpg", "b.jpg"}
	bodies := [][]byte{[]byte("c"), []byte("a"), []byte("b")}

	writeFiles(t, dir, names, bodies)

	entries, err := SortedEntries(dir)

	if err != nil {
		t.Fatalf("Failed to list entries, %v", err)
	}

	if len(entries) != len(names) {
		t.Fatalf("Expected %d entries, got %d", len(names), len(entries))
	}

	for i, e := range entries {

		if e.Name != names[i] {
			t.Fatalf("Expected entry %d to be %s, got %s", i, names[i], e.Name)
		}

		if e.Path != filepath.Join(dir, names[i]) {
			t.Fatalf("Unexpected path %s", e.Path)
		}

		if e.Created.IsZero() {
			t.Fatalf("Expected creation time for %s", e.Name)
		}
	}
}

func TestSortedEntriesIncludesDirectories(t *testing.T) {

	dir := t.TempDir()

	err := os.Mkdir(filepath.Join(dir, "sub"), 0755)

	if err != nil {
		t.Fatalf("Failed to create subdirectory, %v", err)
	}

	entries, err := SortedEntries(dir)

	if err != nil {
		t.Fatalf("Failed to list entries, %v", err)
	}

	if len(entries) != 1 || entries[0].Name != "sub" {
		t.Fatalf("Expected subdirectory entry, got %v", entries)
	}
}

func TestSortedEntriesStatFailureSortsFirst(t *testing.T) {

	dir := t.TempDir()

	writeFiles(t, dir, []string{"a.jpg"}, [][]byte{[]byte("a")})

	time.Sleep(50 * time.Millisecond)

	// A dangling symlink is listed but cannot be stat-ed.
	err := os.Symlink(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "z.jpg"))

	if err != nil {
		t.Skipf("Failed to create symlink, %v", err)
	}

	entries, err := SortedEntries(dir)

	if err != nil {
		t.Fatalf("Failed to list entries, %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Name != "z.jpg" {
		t.Fatalf("Expected dangling symlink to sort first, got %s", entries[0].Name)
	}

	if !entries[0].Created.IsZero() {
		t.Fatalf("Expected zero creation time for dangling symlink, got %v", entries[0].Created)
	}

	if entries[1].Name != "a.jpg" || entries[1].Created.IsZero() {
		t.Fatalf("Unexpected second entry %v", entries[1])
	}
}

func TestSortedEntriesMissingDirectory(t *testing.T) {

	_, err := SortedEntries(filepath.Join(t.TempDir(), "missing"))

	if err == nil {
		t.Fatalf("Expected an error listing a missing directory")
	}
}

func TestCreationTime(t *testing.T) {

	path := filepath.Join(t.TempDir(), "a.jpg")

	before := time.Now().Add(-time.Minute)

	err := os.WriteFile(path, []byte("a"), 0644)

	if err != nil {
		t.Fatalf("Failed to write file, %v", err)
	}

	created, err := CreationTime(path)

	if err != nil {
		t.Fatalf("Failed to derive creation time, %v", err)
	}

	if created.Before(before) {
		t.Fatalf("Unexpected creation time %v", created)
	}

	_, err = CreationTime(path + ".missing")

	if err == nil {
		t.Fatalf("Expected an error for a missing file")
	}
}

func TestWalker(t *testing.T) {

	ctx := context.Background()
	dir := t.TempDir()

	names := []string{"b.jpg", "a.jpg"}

	bodies := [][]byte{
		exiftest.JPEG(&exiftest.Options{
			Latitude:  exiftest.DMS(47, 30, 0, "N"),
			Longitude: exiftest.DMS(19, 0, 0, "E"),
		}),
		exiftest.JPEG(&exiftest.Options{
			Latitude:  exiftest.DMS(46, 0, 0, "N"),
			Longitude: exiftest.DMS(18, 0, 0, "E"),
		}),
	}

	writeFiles(t, dir, names, bodies)

	w, err := NewWalker(ctx, dir, &WalkerOptions{Project: stubProject})

	if err != nil {
		t.Fatalf("Failed to create walker, %v", err)
	}

	if w.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", w.Len())
	}

	expected := [][2]float64{
		{47.5, 19.0},
		{46.0, 18.0},
	}

	i := 0

	for w.Next(ctx) {

		if i >= len(expected) {
			t.Fatalf("Walker yielded too many photos")
		}

		c := w.Coordinate()

		if c.Latitude != expected[i][0] || c.Longitude != expected[i][1] {
			t.Fatalf("Unexpected coordinate %d: %v", i, c)
		}

		if w.Photo().Path != filepath.Join(dir, names[i]) {
			t.Fatalf("Unexpected path %s", w.Photo().Path)
		}

		i += 1
	}

	if w.Err() != nil {
		t.Fatalf("Walker failed, %v", w.Err())
	}

	if i != len(expected) {
		t.Fatalf("Expected %d photos, got %d", len(expected), i)
	}

	if w.Next(ctx) {
		t.Fatalf("Walker should not restart")
	}
}

func TestWalkerUnusualFileNames(t *testing.T) {

	ctx := context.Background()
	dir := t.TempDir()

	names := []string{
		"k\xe9p.jpg",
		"img\t1.jpg",
		"photo.attrs",
		"ok.jpg",
	}

	body := exiftest.JPEG(&exiftest.Options{
		Latitude:  exiftest.DMS(47, 30, 0, "N"),
		Longitude: exiftest.DMS(19, 0, 0, "E"),
	})

	bodies := make([][]byte, len(names))

	for i := range names {
		bodies[i] = body
	}

	writeFiles(t, dir, names, bodies)

	opts := &WalkerOptions{
		Project:     stubProject,
		Fingerprint: true,
	}

	w, err := NewWalker(ctx, dir, opts)

	if err != nil {
		t.Fatalf("Failed to create walker, %v", err)
	}

	i := 0

	for w.Next(ctx) {

		ph := w.Photo()

		if ph.Key != names[i] {
			t.Fatalf("Expected photo %d to be %q, got %q", i, names[i], ph.Key)
		}

		if ph.Coordinate.Latitude != 47.5 || ph.Coordinate.Longitude != 19.0 {
			t.Fatalf("Unexpected coordinate for %q: %v", ph.Key, ph.Coordinate)
		}

		if ph.Fingerprint == "" {
			t.Fatalf("Expected fingerprint for %q", ph.Key)
		}

		i += 1
	}

	if w.Err() != nil {
		t.Fatalf("Walker failed, %v", w.Err())
	}

	if i != len(names) {
		t.Fatalf("Expected %d photos, got %d", len(names), i)
	}
}

func TestWalkerStopsAtFirstError(t *testing.T) {

	ctx := context.Background()
	dir := t.TempDir()

	names := []string{"good.jpg", "plain.jpg", "later.jpg"}

	good := exiftest.JPEG(&exiftest.Options{
		Latitude:  exiftest.DMS(47, 0, 0, "N"),
		Longitude: exiftest.DMS(19, 0, 0, "E"),
	})

	bodies := [][]byte{good, exiftest.JPEGWithoutExif(), good}

	writeFiles(t, dir, names, bodies)

	w, err := NewWalker(ctx, dir, &WalkerOptions{Project: stubProject})

	if err != nil {
		t.Fatalf("Failed to create walker, %v", err)
	}

	count := 0

	for w.Next(ctx) {
		count += 1
	}

	if count != 1 {
		t.Fatalf("Expected 1 photo before the error, got %d", count)
	}

	if !errors.Is(w.Err(), media.ErrNoExif) {
		t.Fatalf("Expected ErrNoExif, got %v", w.Err())
	}

	if w.Next(ctx) {
		t.Fatalf("Walker should stay stopped after an error")
	}

	if w.Photo() != nil {
		t.Fatalf("Expected no photo after an error")
	}
}

func TestWalkerEmptyDirectory(t *testing.T) {

	ctx := context.Background()

	w, err := NewWalker(ctx, t.TempDir(), nil)

	if err != nil {
		t.Fatalf("Failed to create walker, %v", err)
	}

	if w.Next(ctx) {
		t.Fatalf("Expected no photos")
	}

	if w.Err() != nil {
		t.Fatalf("Unexpected error, %v", w.Err())
	}
}

func TestWalkerCancelledContext(t *testing.T) {

	dir := t.TempDir()

	body := exiftest.JPEG(&exiftest.Options{
		Latitude:  exiftest.DMS(47, 0, 0, "N"),
		Longitude: exiftest.DMS(19, 0, 0, "E"),
	})

	writeFiles(t, dir, []string{"a.jpg"}, [][]byte{body})

	w, err := NewWalker(context.Background(), dir, &WalkerOptions{Project: stubProject})

	if err != nil {
		t.Fatalf("Failed to create walker, %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if w.Next(ctx) {
		t.Fatalf("Expected cancelled walker to stop")
	}

	if !errors.Is(w.Err(), context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", w.Err())
	}
}
