package ocr

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/preprocess"
)

// Extractor runs an engine over the variant×profile grid.
type Extractor struct {
	engine   Engine
	logger   *slog.Logger
	profiles []Profile
	workers  int
}

// NewExtractor creates an extractor. workers bounds concurrent engine calls;
// values below one run the grid sequentially.
func NewExtractor(engine Engine, profiles []Profile, workers int, logger *slog.Logger) *Extractor {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		engine:   engine,
		profiles: profiles,
		workers:  workers,
		logger:   common.LoggerOrDefault(logger),
	}
}

// Profiles returns the profiles applied to every variant.
func (e *Extractor) Profiles() []Profile {
	return e.profiles
}

// Extract returns every non-empty candidate in grid order: variants in the
// order given, profiles in configured order within each variant. Cells whose
// engine call fails are logged and skipped. Only cancellation is an error.
func (e *Extractor) Extract(ctx context.Context, variants []preprocess.Variant) ([]model.TextCandidate, error) {
	start := time.Now()
	cells := make([]model.TextCandidate, len(variants)*len(e.profiles))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for vi, v := range variants {
		for pi, p := range e.profiles {
			idx := vi*len(e.profiles) + pi
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				text, err := e.engine.Recognize(ctx, v.Image, p)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					e.logger.Warn("OCR pass failed",
						"variant", v.Name,
						"profile", p.Name,
						"error", err)
					return nil
				}
				cells[idx] = model.TextCandidate{
					Variant: v.Name,
					Profile: p.Name,
					Text:    Normalize(text),
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]model.TextCandidate, 0, len(cells))
	for _, c := range cells {
		if c.Text != "" {
			candidates = append(candidates, c)
		}
	}

	e.logger.Debug("OCR grid complete",
		"variants", len(variants),
		"profiles", len(e.profiles),
		"candidates", len(candidates),
		"duration_ms", time.Since(start).Milliseconds())

	return candidates, nil
}
