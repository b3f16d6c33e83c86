// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	// Extra decoders; imaging already registers jpeg, png, gif, bmp and tiff.
	_ "golang.org/x/image/webp"
)

// maxPixels caps the decoded size of an upload.
const maxPixels = 40_000_000

// ErrNotImage is returned for bytes no registered decoder accepts.
var ErrNotImage = errors.New("media: data is not a decodable image")

// decode sniffs the header first so oversized images are refused before allocation.
func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrNotImage)
	}

	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	if config.Width <= 0 || config.Height <= 0 || config.Width*config.Height > maxPixels {
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", ErrNotImage, config.Width, config.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("media_encode_png_failed: %w", err)
	}
	return buffer.Bytes(), nil
}

// FitSize returns the dimensions of a width x height image scaled down, aspect
// preserved, to fit box. Images already inside the box keep their size.
func FitSize(width, height int, box Box) (int, int) {
	if width <= box.Width && height <= box.Height {
		return width, height
	}

	ratio := math.Min(float64(box.Width)/float64(width), float64(box.Height)/float64(height))
	newWidth := max(1, int(math.Round(float64(width)*ratio)))
	newHeight := max(1, int(math.Round(float64(height)*ratio)))
	return newWidth, newHeight
}

// Shrink scales img to fit box. It reports false and returns img unchanged
// when no resize was needed.
func Shrink(img image.Image, box Box) (image.Image, bool) {
	bounds := img.Bounds()
	width, height := FitSize(bounds.Dx(), bounds.Dy(), box)
	if width == bounds.Dx() && height == bounds.Dy() {
		return img, false
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), true
}

// ShrinkPNG decodes data, shrinks it into box and re-encodes it as PNG.
// The returned bool is false when data already fits and was left as is.
func ShrinkPNG(data []byte, box Box) ([]byte, bool, error) {
	img, err := decode(data)
	if err != nil {
		return nil, false, err
	}

	resized, changed := Shrink(img, box)
	if !changed {
		return data, false, nil
	}

	out, err := encodePNG(resized)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
