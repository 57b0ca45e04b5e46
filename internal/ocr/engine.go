// Package ocr runs character recognition over image variants and collects
// every text candidate for later selection.
package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Veraticus/spice-extract/internal/common"
)

// Engine recognizes text in a single image under one profile.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, p Profile) (string, error)
}

// EngineConfig configures the available engines.
type EngineConfig struct {
	Binary      string
	Languages   string
	TessdataDir string
}

// TesseractEngine shells out to the tesseract command-line tool.
type TesseractEngine struct {
	runner Runner
	logger *slog.Logger
	cfg    EngineConfig
}

// NewTesseractEngine creates an engine that runs the tesseract binary.
// A nil runner executes real processes.
func NewTesseractEngine(cfg EngineConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	logger = common.LoggerOrDefault(logger)
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize writes img to a temporary PNG and runs tesseract over it.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, p Profile) (string, error) {
	dir, err := os.MkdirTemp("", "spice-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "page.png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	// tesseract <file> stdout -l <lang> --psm N [...]
	args := []string{path, "stdout"}
	if e.cfg.Languages != "" {
		args = append(args, "-l", e.cfg.Languages)
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, p.args()...)

	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w: %s", p.Name, err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}

// NewEngine returns the engine selected by name.
func NewEngine(name string, cfg EngineConfig, logger *slog.Logger) (Engine, error) {
	switch name {
	case "", "tesseract":
		return NewTesseractEngine(cfg, nil, logger), nil
	case "gosseract":
		eng, err := NewGosseractEngine(cfg)
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
	return nil, fmt.Errorf("%w: unknown OCR engine %q", common.ErrInvalidConfig, name)
}
