package ocr

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// PreprocessOptions tune the image cleanup applied before recognition.
type PreprocessOptions struct {
	// UpscaleBelow doubles images narrower than this many pixels.
	UpscaleBelow int
	// Contrast is the percentage passed to imaging.AdjustContrast.
	Contrast float64
	// Sharpen is the sigma passed to imaging.Sharpen; 0 disables it.
	Sharpen float64
}

// DefaultPreprocessOptions returns the options used by DefaultConfig.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		UpscaleBelow: 1000,
		Contrast:     20,
		Sharpen:      1.0,
	}
}

// Preprocess decodes data honoring EXIF orientation, converts it to grayscale,
// upscales small images, boosts contrast, sharpens and re-encodes it as PNG.
func Preprocess(data []byte, opts PreprocessOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	gray := imaging.Grayscale(img)
	if w := gray.Bounds().Dx(); opts.UpscaleBelow > 0 && w < opts.UpscaleBelow {
		gray = imaging.Resize(gray, w*2, 0, imaging.Lanczos)
	}
	if opts.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, opts.Contrast)
	}
	if opts.Sharpen > 0 {
		gray = imaging.Sharpen(gray, opts.Sharpen)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	return buf.Bytes(), nil
}
