package export

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/kisszoltan/coordex/common"
	"github.com/tidwall/sjson"
	"github.com/whosonfirst/go-ioutil"
)

// MarshalGeoJSON encodes c as a GeoJSON FeatureCollection with a (legacy) "crs" member
// naming the collection's coordinate reference system.
func MarshalGeoJSON(c *Collection) ([]byte, error) {

	body, err := c.Features.MarshalJSON()

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal feature collection, %w", err)
	}

	if c.CRS == nil {
		return body, nil
	}

	crs := map[string]any{
		"type": "name",
		"properties": map[string]any{
			"name": c.CRS.URN,
		},
	}

	body, err = sjson.SetBytes(body, "crs", crs)

	if err != nil {
		return nil, fmt.Errorf("Failed to assign crs, %w", err)
	}

	return body, nil
}

// WriteGeoJSON writes c to dir/name using a whosonfirst/go-writer filesystem writer. It
// returns the path of the new file.
func WriteGeoJSON(ctx context.Context, c *Collection, dir string, name string) (string, error) {

	if c.Len() == 0 {
		return "", ErrEmptyCollection
	}

	body, err := MarshalGeoJSON(c)

	if err != nil {
		return "", err
	}

	wr, err := common.NewFileSystemWriter(ctx, dir)

	if err != nil {
		return "", err
	}

	fh, err := ioutil.NewReadSeekCloser(bytes.NewReader(body))

	if err != nil {
		return "", fmt.Errorf("Failed to create ReadSeekCloser for %s, %w", name, err)
	}

	defer fh.Close()

	_, err = wr.Write(ctx, name, fh)

	if err != nil {
		return "", fmt.Errorf("Failed to write %s, %w", name, err)
	}

	return filepath.Join(dir, name), nil
}
