// coordex reads the EXIF GPS coordinates of the photos in a directory, ordered by file
// creation time, and writes them to a shapefile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kisszoltan/coordex/app/coordex"
)

func main() {

	ctx := context.Background()

	err := coordex.Run(ctx)

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
