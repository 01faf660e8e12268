// Package coordex implements the coordex application: validate a directory of photos,
// read their GPS coordinates in creation order and write them to a shapefile.
package coordex

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kisszoltan/coordex/config"
	"github.com/kisszoltan/coordex/media"
	"github.com/kisszoltan/coordex/operations/export"
	"github.com/kisszoltan/coordex/operations/gather"
)

// DefaultDirectory is the directory processed when none is given.
const DefaultDirectory = "samples"

var (
	// ErrDirectoryNotExist is wrapped by a DirectoryError for missing directories.
	ErrDirectoryNotExist = errors.New("directory does not exist")
	// ErrNotDirectory is wrapped by a DirectoryError for paths that are not directories.
	ErrNotDirectory = errors.New("not a directory")
)

// DirectoryError is returned when the input directory is not usable.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {

	switch {
	case errors.Is(e.Err, ErrDirectoryNotExist):
		return fmt.Sprintf("Directory %s does not exist.", e.Path)
	case errors.Is(e.Err, ErrNotDirectory):
		return fmt.Sprintf("%s is not a directory.", e.Path)
	default:
		return fmt.Sprintf("Invalid directory %s, %v", e.Path, e.Err)
	}
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// RunOptions defines the options for a single coordex run.
type RunOptions struct {
	// The directory of photos to process.
	Directory string
	// The directory to write output files to.
	Output string
	// Write per-photo attributes.
	Properties bool
	// Also write a GeoJSON copy of the output.
	GeoJSON bool
	// Enable debug logging.
	Verbose bool
	// Where user facing messages are written. Defaults to os.Stdout.
	Stdout io.Writer
	// Where log messages are written. Defaults to os.Stderr.
	Stderr io.Writer
	// An optional media.ProjectFunc used in place of projection.WGS84ToEOV.
	Project media.ProjectFunc
}

// Run runs the coordex application using the default flag set and os.Args.
func Run(ctx context.Context) error {
	fs := DefaultFlagSet()
	return RunWithFlagSet(ctx, fs, os.Args[1:])
}

// RunWithFlagSet parses args with fs, resolves the remaining options with the config
// package and runs the coordex application.
func RunWithFlagSet(ctx context.Context, fs *flag.FlagSet, args []string) error {

	err := fs.Parse(args)

	if err != nil {
		return err
	}

	err = CheckArguments(fs)

	if err != nil {
		return err
	}

	cfg, err := config.Load(fs)

	if err != nil {
		return err
	}

	opts := &RunOptions{
		Directory:  DirectoryArgument(fs.Args()),
		Output:     cfg.Output,
		Properties: cfg.Properties,
		GeoJSON:    cfg.GeoJSON,
		Verbose:    cfg.Verbose,
	}

	return RunWithOptions(ctx, opts)
}

// RunWithOptions runs the coordex application. It returns a *DirectoryError for an
// unusable input directory and a *media.ImageError for the first photo without EXIF
// GPS coordinates, in which case no output is written.
func RunWithOptions(ctx context.Context, opts *RunOptions) error {

	stdout := opts.Stdout

	if stdout == nil {
		stdout = os.Stdout
	}

	stderr := opts.Stderr

	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelInfo

	if opts.Verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	dir := opts.Directory

	if dir == "" {
		dir = DefaultDirectory
	}

	output := opts.Output

	if output == "" {
		output = config.DefaultOutput
	}

	err := ensureDirectory(dir)

	if err != nil {
		return err
	}

	abs_dir, err := filepath.Abs(dir)

	if err != nil {
		return fmt.Errorf("Failed to derive absolute path for %s, %w", dir, err)
	}

	name := filepath.Base(abs_dir)

	logger := slog.Default()
	logger = logger.With("directory", dir, "output", output)

	walker_opts := &gather.WalkerOptions{
		Project:     opts.Project,
		Fingerprint: opts.Properties,
		ImageHash:   opts.Properties,
	}

	walker, err := gather.NewWalker(ctx, dir, walker_opts)

	if err != nil {
		return fmt.Errorf("Failed to create walker for %s, %w", dir, err)
	}

	logger.Debug("Process directory", "count", walker.Len())

	shp_opts := &export.ShapefileOptions{
		Directory:  output,
		Filename:   name + ".shp",
		Properties: opts.Properties,
		GeoJSON:    opts.GeoJSON,
		Stdout:     stdout,
	}

	_, err = export.CreateShapefile(ctx, walker, shp_opts)

	if err != nil {
		return err
	}

	return nil
}

func ensureDirectory(dir string) error {

	info, err := os.Stat(dir)

	if err != nil {

		if errors.Is(err, os.ErrNotExist) {
			return &DirectoryError{Path: dir, Err: ErrDirectoryNotExist}
		}

		return fmt.Errorf("Failed to stat %s, %w", dir, err)
	}

	if !info.IsDir() {
		return &DirectoryError{Path: dir, Err: ErrNotDirectory}
	}

	return nil
}
