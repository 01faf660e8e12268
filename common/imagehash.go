package common

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/corona10/goimagehash"
)

// ImageHashRsp is a struct representing the results of an image hashing operation.
type ImageHashRsp struct {
	// String label describing the image hashing procedure used.
	Approach string
	// The hexidecimal hash of an image.
	Hash string
}

// ImageHashApproaches are the perceptual hashing procedures applied by ImageHashes.
var ImageHashApproaches = []string{
	"avg",
	"diff",
}

// Generate a list of ImageHashRsp instances, one per entry in ImageHashApproaches, for
// the file identified by key using the corona10/goimagehash package. Approaches are
// applied one after the other; an approach that fails is logged and skipped.
func ImageHashes(ctx context.Context, open OpenFunc, key string) ([]*ImageHashRsp, error) {

	r, err := open(ctx, key)

	if err != nil {
		return nil, err
	}

	defer r.Close()

	im, _, err := image.Decode(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image from %s, %w", key, err)
	}

	hashes := make([]*ImageHashRsp, 0)

	for _, a := range ImageHashApproaches {

		rsp, err := imageHash(ctx, im, a)

		if err != nil {

			if ctx.Err() != nil {
				return nil, err
			}

			slog.Error("Failed to derive image hash", "path", key, "approach", a, "error", err)
			continue
		}

		hashes = append(hashes, rsp)
	}

	return hashes, nil
}

func imageHash(ctx context.Context, im image.Image, approach string) (*ImageHashRsp, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	var h *goimagehash.ImageHash
	var err error

	switch approach {
	case "avg":
		h, err = goimagehash.AverageHash(im)
	case "diff":
		h, err = goimagehash.DifferenceHash(im)
	default:
		err = errors.New("Unknown approach")
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to process image hash appoach '%s', %w", approach, err)
	}

	rsp := &ImageHashRsp{
		Approach: approach,
		Hash:     h.ToString(),
	}

	return rsp, nil
}
