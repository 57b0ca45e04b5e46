package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-extract/internal/cli"
	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/pipeline"
	"github.com/Veraticus/spice-extract/internal/storage"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract categorized transactions from receipts and statements",
		Long: `Extract transactions from receipt photos, PDF receipts, and bank statement
exports. Globs and directories are expanded.

Examples:
  # A single receipt photo
  spice extract ~/Pictures/receipt.jpg

  # Every statement in a folder, saved for later training
  spice extract --save ~/Downloads/statements/

  # Tell the detector which store or bank a file came from
  spice extract --origin tinkoff ~/Downloads/operations.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().String("kind", "", "document kind (image, pdf, spreadsheet, delimited, ofx, text); detected when empty")
	cmd.Flags().String("origin", "", "store or bank hint, e.g. pyaterochka or tinkoff")
	cmd.Flags().Bool("save", false, "save results to the database")
	cmd.Flags().Bool("json", false, "print results as JSON")
	cmd.Flags().Duration("timeout", 0, "per-document time limit (default: ocr.timeout)")
	cmd.Flags().Int("workers", 0, "OCR worker count (default: ocr.workers)")

	return cmd
}

type extractSummary struct {
	documents int
	records   int
	failed    int
	skipped   int
}

func runExtract(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	origin, _ := cmd.Flags().GetString("origin")
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	workers, _ := cmd.Flags().GetInt("workers")

	kind, err := parseKind(kindFlag)
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("No files found to extract", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.OCR.Workers = workers
	}
	if timeout <= 0 {
		timeout = cfg.OCR.Timeout
	}

	pctx, err := buildContext(cfg, true)
	if err != nil {
		return err
	}
	p := pipeline.New(pctx, slog.Default())

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(cmd.Context(), save)
	defer stop()

	var store *storage.SQLiteStorage
	if save {
		store, err = initStorage(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	slog.Debug("Extracting documents",
		"file_count", len(files),
		"kind", kind,
		"origin", origin,
		"save", save)

	progress := cli.NewProgress(os.Stderr, len(files), "Extracting documents...")
	var (
		results []*model.DocumentResult
		summary extractSummary
	)

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := extractFile(ctx, p, path, kind, origin, timeout)
		progress.Step()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			summary.failed++
			code, _ := common.CodeOf(err)
			slog.Warn("Could not extract document", "file", filepath.Base(path), "code", code, "error", err)
			continue
		}

		if store != nil {
			saved, dropped, err := saveResult(ctx, store, result)
			if err != nil {
				return err
			}
			summary.skipped += dropped
			if saved == nil {
				slog.Info("All rows already imported", "file", result.SourceName)
				continue
			}
			result = saved
		}

		summary.documents++
		summary.records += len(result.Records)
		results = append(results, result)
	}
	progress.Finish()

	if err := printResults(cmd, results, asJSON); err != nil {
		return err
	}
	printSummary(cmd, summary, save)

	if handler.WasInterrupted() {
		return ctx.Err()
	}
	if summary.documents == 0 && summary.failed > 0 {
		return fmt.Errorf("%w: none of %d documents could be extracted", common.ErrNotRecognized, summary.failed)
	}
	return nil
}

func extractFile(ctx context.Context, p *pipeline.Pipeline, path string, kind model.DocumentKind, origin string, timeout time.Duration) (*model.DocumentResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	doc := model.NewSourceDocument(filepath.Base(path), data, kind, origin)
	return p.Process(ctx, doc)
}

// saveResult persists a result, leaving out statement rows that an earlier
// import already stored. A nil result means nothing new was left.
func saveResult(ctx context.Context, store *storage.SQLiteStorage, result *model.DocumentResult) (*model.DocumentResult, int, error) {
	if result.SourceKind == model.SourceStatement {
		fresh := make([]model.ExtractedRecord, 0, len(result.Records))
		total := decimal.Zero
		for _, rec := range result.Records {
			seen, err := store.HasStatementRow(ctx, rec, result.ID)
			if err != nil {
				return nil, 0, err
			}
			if seen {
				continue
			}
			fresh = append(fresh, rec)
			total = total.Add(rec.Amount.Mul(decimal.NewFromInt(int64(rec.Quantity))))
		}
		dropped := len(result.Records) - len(fresh)
		if len(fresh) == 0 {
			return nil, dropped, nil
		}
		if dropped > 0 {
			trimmed := *result
			trimmed.Records = fresh
			trimmed.TotalAmount = total
			result = &trimmed
		}
		if err := store.SaveDocumentResult(ctx, result); err != nil {
			return nil, 0, fmt.Errorf("failed to save %s: %w", result.SourceName, err)
		}
		return result, dropped, nil
	}

	if err := store.SaveDocumentResult(ctx, result); err != nil {
		return nil, 0, fmt.Errorf("failed to save %s: %w", result.SourceName, err)
	}
	return result, 0, nil
}

func printResults(cmd *cobra.Command, results []*model.DocumentResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []*model.DocumentResult{}
		}
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}

	for _, r := range results {
		if _, err := fmt.Fprintln(out, cli.RenderResult(r)); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, s extractSummary, saved bool) {
	w := cmd.ErrOrStderr()
	msg := fmt.Sprintf("Extracted %d records from %d documents", s.records, s.documents)
	if saved {
		msg += " (saved)"
	}
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(msg))
	if s.skipped > 0 {
		_, _ = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Skipped %d statement rows imported earlier", s.skipped)))
	}
	if s.failed > 0 {
		_, _ = fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d documents could not be extracted", s.failed)))
	}
}
