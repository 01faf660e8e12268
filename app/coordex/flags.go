package coordex

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kisszoltan/coordex/config"
)

// DefaultFlagSet returns a flag.FlagSet with the default flags for the coordex tool.
func DefaultFlagSet() *flag.FlagSet {

	fs := flag.NewFlagSet("coordex", flag.ContinueOnError)

	fs.String("output", config.DefaultOutput, "The directory to write shapefiles to.")
	fs.Bool("properties", false, "Write per-photo attributes (name, taken, lat, lng, eov_x, eov_y, sha1) alongside each point.")
	fs.Bool("geojson", false, "Also write a GeoJSON copy of the output.")
	fs.Bool("verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Extract GPS coordinates from the photos in a directory and write them to a shapefile, ordered by file creation time.\n\n")
		fmt.Fprintf(fs.Output(), "Usage:\n\t %s [options] [directory]\n\n", os.Args[0])
		fmt.Fprintf(fs.Output(), "Options must be given before the directory. If directory is omitted, or more than one is given, \"%s\" is used.\n\n", DefaultDirectory)
		fmt.Fprintf(fs.Output(), "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}

// ErrMisplacedFlag is returned when a known flag follows the directory argument.
var ErrMisplacedFlag = errors.New("flags must be given before the directory")

// CheckArguments returns an error wrapping ErrMisplacedFlag if any of the positional
// arguments left over after fs has been parsed names one of its flags.
func CheckArguments(fs *flag.FlagSet) error {

	for _, arg := range fs.Args() {

		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")

		if fs.Lookup(name) != nil {
			return fmt.Errorf("Invalid argument %s, %w", arg, ErrMisplacedFlag)
		}
	}

	return nil
}

// DirectoryArgument returns the directory to process given the positional arguments
// args: the only argument if there is exactly one, DefaultDirectory otherwise.
func DirectoryArgument(args []string) string {

	if len(args) == 1 {
		return args[0]
	}

	return DefaultDirectory
}
