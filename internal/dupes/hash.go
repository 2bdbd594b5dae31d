package dupes

import (
	"fmt"
	"image"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	// Register webp decoding for imaging.Open.
	_ "golang.org/x/image/webp"
)

// Algorithm selects the perceptual hash function.
type Algorithm string

const (
	// AHash is the average hash: fast, coarse.
	AHash Algorithm = "ahash"
	// DHash is the difference hash: robust against brightness shifts.
	DHash Algorithm = "dhash"
	// PHash is the DCT perception hash: slowest, most discriminating.
	// This is the default.
	PHash Algorithm = "phash"
)

// ParseAlgorithm maps a user-supplied name onto an Algorithm, defaulting to
// PHash for an empty string.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return PHash, nil
	case AHash:
		return AHash, nil
	case DHash:
		return DHash, nil
	case PHash:
		return PHash, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q", name)
	}
}

// maxHashDimension bounds the decode size before hashing. Hash inputs are
// resampled to tiny grids anyway, so shrinking first only cuts memory.
const maxHashDimension = 512

// hashFile decodes one image and computes its 64-bit perceptual hash.
// Animated formats contribute their first frame only.
func hashFile(path string, algo Algorithm) (*goimagehash.ImageHash, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxHashDimension || bounds.Dy() > maxHashDimension {
		img = imaging.Fit(img, maxHashDimension, maxHashDimension, imaging.Lanczos)
	}

	return hashImage(img, algo)
}

func hashImage(img image.Image, algo Algorithm) (*goimagehash.ImageHash, error) {
	switch algo {
	case AHash:
		return goimagehash.AverageHash(img)
	case DHash:
		return goimagehash.DifferenceHash(img)
	default:
		return goimagehash.PerceptionHash(img)
	}
}
