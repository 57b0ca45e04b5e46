package categorize

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// ModelSet holds one classifier per category type. Either may be nil.
type ModelSet struct {
	Expense *Model
	Income  *Model
}

// For returns the model for records moving in direction d.
func (s ModelSet) For(d model.Direction) *Model {
	if d == model.DirectionIncome {
		return s.Income
	}
	return s.Expense
}

// With returns a copy of s with the model for typ replaced.
func (s ModelSet) With(typ model.CategoryType, m *Model) ModelSet {
	if typ == model.CategoryTypeIncome {
		s.Income = m
	} else {
		s.Expense = m
	}
	return s
}

// ModelPath is where the model for typ lives in dir.
func ModelPath(dir string, typ model.CategoryType) string {
	return filepath.Join(dir, string(typ)+".model")
}

// LoadModelSet reads the models found in dir. A missing model is not an
// error; the classifier layer then defers to the fallback. A corrupt model is.
func LoadModelSet(dir string, logger *slog.Logger) (ModelSet, error) {
	logger = common.LoggerOrDefault(logger)
	var set ModelSet
	if dir == "" {
		return set, nil
	}

	for _, typ := range []model.CategoryType{model.CategoryTypeExpense, model.CategoryTypeIncome} {
		path := ModelPath(dir, typ)
		m, err := LoadModelFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No classifier model, using fallback category", "type", typ, "path", path)
			continue
		}
		if err != nil {
			return ModelSet{}, fmt.Errorf("%w: %s: %v", common.ErrModelUnavailable, path, err)
		}
		logger.Debug("Loaded classifier model", "type", typ, "classes", len(m.Classes()))
		set = set.With(typ, m)
	}
	return set, nil
}
