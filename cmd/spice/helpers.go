package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/config"
	"github.com/Veraticus/spice-extract/internal/dictionary"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/ocr"
	"github.com/Veraticus/spice-extract/internal/pipeline"
	"github.com/Veraticus/spice-extract/internal/preprocess"
	"github.com/Veraticus/spice-extract/internal/storage"
)

// loadConfig reads the layered configuration held by viper.
func loadConfig() (config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path, slog.Default())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadDictionary reads the override file, if any, and compiles it.
func loadDictionary(cfg config.Config) (*dictionary.Compiled, error) {
	dict, err := dictionary.LoadFile(cfg.Dictionary.Path)
	if err != nil {
		return nil, err
	}
	return dict.Compile()
}

// buildContext assembles the shared pipeline state. OCR is optional so
// statement-only workflows run on machines without tesseract.
func buildContext(cfg config.Config, withOCR bool) (*pipeline.Context, error) {
	logger := slog.Default()

	compiled, err := loadDictionary(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	models, err := categorize.LoadModelSet(cfg.Classifier.ModelDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier models: %w", err)
	}

	deps := pipeline.Deps{
		Dictionary: compiled,
		Logger:     logger,
		Models:     models,
		Extraction: cfg.Extraction,
		Preprocess: preprocess.DefaultOptions(),
		Profiles:   ocr.DefaultProfiles(),
		OCRWorkers: cfg.OCR.Workers,
	}

	if withOCR {
		engine, err := ocr.NewEngine(cfg.OCR.Engine, ocr.EngineConfig{
			Binary:      cfg.OCR.Binary,
			Languages:   cfg.OCR.Languages,
			TessdataDir: cfg.OCR.TessdataDir,
		}, logger)
		if err != nil {
			return nil, err
		}
		deps.Engine = engine
	}

	return pipeline.NewContext(deps)
}

// expandFiles resolves globs and directories into a sorted, de-duplicated
// file list. Directories are walked for files of a known document kind.
func expandFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", match, err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}
			err = filepath.WalkDir(match, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if _, ok := model.KindFromExtension(filepath.Ext(path)); ok {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", match, err)
			}
		}
	}

	return files, nil
}

// parseKind validates a --kind flag value. Empty means detect.
func parseKind(s string) (model.DocumentKind, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	kind, ok := model.ParseDocumentKind(s)
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return kind, nil
}

// parseType validates a --type flag value.
func parseType(s string) (model.CategoryType, error) {
	typ, ok := model.ParseCategoryType(s)
	if !ok {
		return "", fmt.Errorf("type must be expense or income, got %q", s)
	}
	return typ, nil
}
