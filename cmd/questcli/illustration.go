package main

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/wailsapp/mimetype"
)

// compressIllustration resizes and re-encodes a quest illustration for
// web delivery. Returns the JPEG bytes and their media type.
func compressIllustration(imgContent []byte, maxWidth uint) ([]byte, string, error) {
	mType := mimetype.Detect(imgContent)
	if mType == nil {
		return nil, "", fmt.Errorf("unknown image type")
	}

	var img image.Image
	var err error
	switch mType.String() {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(imgContent))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(imgContent))
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", mType.String())
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	width := uint(img.Bounds().Dx())
	if width > maxWidth {
		width = maxWidth
	}
	resizedImg := resize.Resize(width, 0, img, resize.Lanczos3)

	var compressed bytes.Buffer
	err = jpeg.Encode(&compressed, resizedImg, &jpeg.Options{Quality: 85})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image to JPEG: %w", err)
	}

	return compressed.Bytes(), "image/jpeg", nil
}
