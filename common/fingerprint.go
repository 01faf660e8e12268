package common

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
)

// Generate a SHA-1 hash of the file identified by key.
func FingerprintFile(ctx context.Context, open OpenFunc, key string) (string, error) {

	fh, err := open(ctx, key)

	if err != nil {
		return "", err
	}

	defer fh.Close()

	return Fingerprint(fh)
}

// Generate a SHA-1 hash of the body of r.
func Fingerprint(r io.Reader) (string, error) {

	// h := sha256.New()
	h := sha1.New()

	_, err := io.Copy(h, r)

	if err != nil {
		return "", fmt.Errorf("Failed to hash body, %w", err)
	}

	hash := h.Sum(nil)
	str := hex.EncodeToString(hash[:])

	return str, nil
}
