//go:build !gosseract

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/Veraticus/spice-extract/internal/common"
)

// GosseractEngine is unavailable without the gosseract build tag.
type GosseractEngine struct{}

// NewGosseractEngine reports that the binary was built without libtesseract.
func NewGosseractEngine(_ EngineConfig) (*GosseractEngine, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags gosseract to use the in-process engine", common.ErrInvalidConfig)
}

// Recognize always fails.
func (e *GosseractEngine) Recognize(_ context.Context, _ image.Image, _ Profile) (string, error) {
	return "", common.ErrInvalidConfig
}
