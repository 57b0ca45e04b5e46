package categorize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// ExampleSource supplies historical categorized descriptions.
type ExampleSource interface {
	LabeledExamples(ctx context.Context, typ model.CategoryType) ([]Example, error)
}

// Trainer rebuilds classifier models out of band. It never touches a model
// that is in use; callers publish the returned model by swapping it in.
type Trainer struct {
	source ExampleSource
	logger *slog.Logger
	dir    string
}

// NewTrainer creates a trainer writing models into dir. An empty dir keeps
// models in memory only.
func NewTrainer(source ExampleSource, dir string, logger *slog.Logger) *Trainer {
	return &Trainer{source: source, dir: dir, logger: common.LoggerOrDefault(logger)}
}

// Retrain trains a fresh model for typ and, when a directory is configured,
// installs it on disk atomically.
func (t *Trainer) Retrain(ctx context.Context, typ model.CategoryType) (*Model, error) {
	examples, err := t.source.LabeledExamples(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to load training examples: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := Train(examples)
	if err != nil {
		return nil, fmt.Errorf("failed to train %s model: %w", typ, err)
	}

	if t.dir != "" {
		path := ModelPath(t.dir, typ)
		if err := m.SaveFile(path); err != nil {
			return nil, err
		}
		t.logger.Info("Installed classifier model", "type", typ, "path", path)
	}

	t.logger.Info("Trained classifier",
		"type", typ,
		"examples", len(examples),
		"classes", len(m.Classes()))
	return m, nil
}
