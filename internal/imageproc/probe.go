// Package imageproc provides validation of incoming images and their normalization before they are sent to Rekognition.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/disintegration/imaging"
)

// MaxSourceBytes - лимит Rekognition на изображение, переданное байтами
const MaxSourceBytes = 5 * 1024 * 1024

// DecodeBase64 accepts standard or unpadded base64, optionally with a data-URL prefix.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty ImageData", model.ErrMalformedInput)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
		}
	}
	return data, nil
}

// DetectFormat checks that data is a decodable JPEG or PNG - the only formats Rekognition accepts.
func DetectFormat(data []byte) (imaging.Format, error) {
	_, f, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return -1, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		return -1, model.ErrUnsupportedFormat
	}

	switch format {
	case imaging.JPEG, imaging.PNG:
	default:
		return -1, model.ErrUnsupportedFormat
	}

	return format, nil
}

// PrepareProbe turns the invocation payload into bytes ready for CompareFaces/IndexFaces.
func PrepareProbe(payload string) ([]byte, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}

	if _, err := DetectFormat(data); err != nil {
		if errors.Is(err, model.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
		}
		return nil, err
	}
	if err := DecodeFull(data); err != nil {
		return nil, err
	}

	return ShrinkToLimit(data, MaxSourceBytes)
}

// DecodeFull decodes the whole image: DecodeConfig reads only the header and lets truncated files through.
func DecodeFull(data []byte) error {
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	return nil
}
