package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-extract/internal/common"
)

// Config holds everything the extraction pipeline and CLI read from configuration.
type Config struct {
	Logging    LoggingConfig
	Database   DatabaseConfig
	Dictionary DictionaryConfig
	Classifier ClassifierConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// DictionaryConfig optionally points at a YAML file overriding built-in dictionaries.
type DictionaryConfig struct {
	Path string
}

// ClassifierConfig locates trained classifier models.
type ClassifierConfig struct {
	ModelDir string
}

// OCRConfig configures the recognition engine and the variant×profile grid.
type OCRConfig struct {
	Engine      string
	Binary      string
	Languages   string
	TessdataDir string
	Workers     int
	Timeout     time.Duration
}

// ExtractionConfig holds plausibility bounds for amounts.
type ExtractionConfig struct {
	ItemMin       decimal.Decimal
	ItemMax       decimal.Decimal
	TotalMin      decimal.Decimal
	TotalMax      decimal.Decimal
	MinNameLength int
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging:    LoggingConfig{Level: "info", Format: "console"},
		Database:   DatabaseConfig{Path: "~/.local/share/spice/extract.db"},
		Classifier: ClassifierConfig{ModelDir: "~/.local/share/spice/models"},
		OCR: OCRConfig{
			Engine:    "tesseract",
			Binary:    "tesseract",
			Languages: "rus+eng",
			Workers:   runtime.NumCPU(),
			Timeout:   2 * time.Minute,
		},
		Extraction: ExtractionConfig{
			ItemMin:       decimal.NewFromInt(1),
			ItemMax:       decimal.NewFromInt(100_000),
			TotalMin:      decimal.NewFromInt(1),
			TotalMax:      decimal.NewFromInt(1_000_000),
			MinNameLength: 2,
		},
	}
}

// SetDefaults registers the built-in values with v so flags, env, and file
// settings layer on top of them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("dictionary.path", d.Dictionary.Path)
	v.SetDefault("classifier.model_dir", d.Classifier.ModelDir)
	v.SetDefault("ocr.engine", d.OCR.Engine)
	v.SetDefault("ocr.binary", d.OCR.Binary)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("ocr.tessdata_dir", d.OCR.TessdataDir)
	v.SetDefault("ocr.workers", d.OCR.Workers)
	v.SetDefault("ocr.timeout", d.OCR.Timeout)
	v.SetDefault("extraction.item_min", d.Extraction.ItemMin.String())
	v.SetDefault("extraction.item_max", d.Extraction.ItemMax.String())
	v.SetDefault("extraction.total_min", d.Extraction.TotalMin.String())
	v.SetDefault("extraction.total_max", d.Extraction.TotalMax.String())
	v.SetDefault("extraction.min_name_length", d.Extraction.MinNameLength)
}

// FromViper reads and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database:   DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Dictionary: DictionaryConfig{Path: ExpandPath(v.GetString("dictionary.path"))},
		Classifier: ClassifierConfig{ModelDir: ExpandPath(v.GetString("classifier.model_dir"))},
		OCR: OCRConfig{
			Engine:      v.GetString("ocr.engine"),
			Binary:      v.GetString("ocr.binary"),
			Languages:   v.GetString("ocr.languages"),
			TessdataDir: ExpandPath(v.GetString("ocr.tessdata_dir")),
			Workers:     v.GetInt("ocr.workers"),
			Timeout:     v.GetDuration("ocr.timeout"),
		},
		Extraction: ExtractionConfig{MinNameLength: v.GetInt("extraction.min_name_length")},
	}

	bounds := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"extraction.item_min", &cfg.Extraction.ItemMin},
		{"extraction.item_max", &cfg.Extraction.ItemMax},
		{"extraction.total_min", &cfg.Extraction.TotalMin},
		{"extraction.total_max", &cfg.Extraction.TotalMax},
	}
	for _, b := range bounds {
		d, err := decimal.NewFromString(v.GetString(b.key))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, b.key, err)
		}
		*b.dst = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	e := c.Extraction
	if !e.ItemMin.IsPositive() || e.ItemMax.LessThanOrEqual(e.ItemMin) {
		return fmt.Errorf("%w: item bounds [%s, %s]", common.ErrInvalidConfig, e.ItemMin, e.ItemMax)
	}
	if !e.TotalMin.IsPositive() || e.TotalMax.LessThanOrEqual(e.TotalMin) {
		return fmt.Errorf("%w: total bounds [%s, %s]", common.ErrInvalidConfig, e.TotalMin, e.TotalMax)
	}
	if e.MinNameLength < 1 {
		return fmt.Errorf("%w: extraction.min_name_length must be positive", common.ErrInvalidConfig)
	}
	if c.OCR.Workers < 1 {
		return fmt.Errorf("%w: ocr.workers must be positive", common.ErrInvalidConfig)
	}
	switch c.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return fmt.Errorf("%w: unknown ocr.engine %q", common.ErrInvalidConfig, c.OCR.Engine)
	}
	return nil
}
