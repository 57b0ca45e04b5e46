//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes text in-process through libtesseract.
type GosseractEngine struct {
	cfg EngineConfig
}

// NewGosseractEngine creates the cgo-backed engine.
func NewGosseractEngine(cfg EngineConfig) (*GosseractEngine, error) {
	return &GosseractEngine{cfg: cfg}, nil
}

// Recognize runs one recognition pass. Clients are not safe for concurrent
// use, so each call gets its own.
func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image, p Profile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("gosseract tessdata: %w", err)
		}
	}
	if e.cfg.Languages != "" {
		if err := client.SetLanguage(splitLanguages(e.cfg.Languages)...); err != nil {
			return "", fmt.Errorf("gosseract language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(p.PSM)); err != nil {
		return "", fmt.Errorf("gosseract psm: %w", err)
	}
	if p.Whitelist != "" {
		if err := client.SetWhitelist(p.Whitelist); err != nil {
			return "", fmt.Errorf("gosseract whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract %s: %w", p.Name, err)
	}
	return text, nil
}
