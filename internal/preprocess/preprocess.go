// Package preprocess produces enhanced variants of a receipt image for OCR.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/Veraticus/spice-extract/internal/common"
)

// Variant names, in the order Variants returns them.
const (
	VariantOriginal = "original"
	VariantContrast = "contrast"
	VariantSharpen  = "sharpen"
	VariantAdaptive = "adaptive"
	VariantMorph    = "morph"
)

// Variant is one processed rendition of the source image.
type Variant struct {
	Image image.Image
	Name  string
}

// Options tunes the preprocessing filters.
type Options struct {
	// MinWidth triggers an upscale to TargetWidth for small photos.
	MinWidth        int
	TargetWidth     int
	Contrast        float64
	SharpenSigma    float64
	ThresholdSigma  float64
	ThresholdOffset uint8
	MorphRadius     int
}

// DefaultOptions returns filter settings tuned for phone photos of thermal receipts.
func DefaultOptions() Options {
	return Options{
		MinWidth:        1000,
		TargetWidth:     1600,
		Contrast:        60,
		SharpenSigma:    1.5,
		ThresholdSigma:  12,
		ThresholdOffset: 12,
		MorphRadius:     1,
	}
}

// Decode reads an image, honouring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableInput, err)
	}
	return img, nil
}

// FromBytes decodes data and returns its variants. An image that cannot be
// opened yields an empty list, which callers treat as a hard failure.
func FromBytes(data []byte, opts Options, logger *slog.Logger) []Variant {
	img, err := Decode(data)
	if err != nil {
		common.LoggerOrDefault(logger).Warn("Failed to decode image", "error", err)
		return nil
	}
	return Variants(img, opts, logger)
}

// Variants returns the original image followed by contrast, sharpened,
// adaptive-threshold, and morphologically cleaned versions. A filter that
// fails is skipped; the original is always present.
func Variants(img image.Image, opts Options, logger *slog.Logger) []Variant {
	logger = common.LoggerOrDefault(logger)
	variants := []Variant{{Name: VariantOriginal, Image: img}}

	base := upscale(imaging.Grayscale(img), opts)

	steps := []struct {
		name string
		fn   func() image.Image
	}{
		{VariantContrast, func() image.Image { return imaging.AdjustContrast(base, opts.Contrast) }},
		{VariantSharpen, func() image.Image { return imaging.Sharpen(base, opts.SharpenSigma) }},
		{VariantAdaptive, func() image.Image { return AdaptiveThreshold(base, opts.ThresholdSigma, opts.ThresholdOffset) }},
		{VariantMorph, func() image.Image {
			return Clean(AdaptiveThreshold(base, opts.ThresholdSigma, opts.ThresholdOffset), opts.MorphRadius)
		}},
	}

	for _, step := range steps {
		out, ok := safely(step.fn)
		if !ok {
			logger.Warn("Preprocessing filter failed", "variant", step.name)
			continue
		}
		variants = append(variants, Variant{Name: step.name, Image: out})
	}

	logger.Debug("Prepared image variants",
		"count", len(variants),
		"width", base.Bounds().Dx(),
		"height", base.Bounds().Dy())

	return variants
}

func upscale(img *image.NRGBA, opts Options) *image.NRGBA {
	if opts.MinWidth <= 0 || img.Bounds().Dx() >= opts.MinWidth {
		return img
	}
	return imaging.Resize(img, opts.TargetWidth, 0, imaging.Lanczos)
}

func safely(fn func() image.Image) (img image.Image, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			img, ok = nil, false
		}
	}()
	img = fn()
	return img, img != nil
}

// AdaptiveThreshold binarizes img against a Gaussian local mean: a pixel
// darker than its neighbourhood by more than offset becomes black.
func AdaptiveThreshold(img image.Image, sigma float64, offset uint8) *image.NRGBA {
	gray := imaging.Grayscale(img)
	mean := imaging.Blur(gray, sigma)

	out := imaging.New(gray.Bounds().Dx(), gray.Bounds().Dy(), color.White)
	for i := 0; i < len(gray.Pix); i += 4 {
		v, m := gray.Pix[i], mean.Pix[i]
		var px uint8 = 255
		if int(v)+int(offset) < int(m) {
			px = 0
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = px, px, px, 255
	}
	return out
}
