package imageproc

import (
	"bytes"
	"fmt"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/disintegration/imaging"
)

const (
	shrinkQuality = 90
	minShrinkSide = 64
)

// ShrinkToLimit re-encodes the image as JPEG, stepping the width down by a quarter until it fits in limit bytes.
// Images already within the limit are returned untouched.
func ShrinkToLimit(data []byte, limit int) ([]byte, error) {
	if len(data) <= limit {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode oversized image: %v", model.ErrMalformedInput, err)
	}

	width := img.Bounds().Dx()
	for width >= minShrinkSide {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos) // 0 - сохраняет пропорции

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(shrinkQuality)); err != nil {
			return nil, fmt.Errorf("failed to encode shrunk image: %w", err)
		}
		if buf.Len() <= limit {
			return buf.Bytes(), nil
		}

		width = width * 3 / 4
	}

	return nil, fmt.Errorf("%w: image cannot be shrunk under %d bytes", model.ErrMalformedInput, limit)
}
