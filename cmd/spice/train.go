package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/cli"
	"github.com/Veraticus/spice-extract/internal/common"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the text classifier from saved records",
		Long: `Train a naive Bayes classifier from records saved with 'spice extract --save'.
Records that fell through to Other are not used. The model is written to
classifier.model_dir and picked up by later runs.`,
		RunE: runTrain,
	}

	cmd.Flags().String("type", "expense", "category type to train (expense or income)")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	typ, err := parseType(typeFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	trainer := categorize.NewTrainer(store, cfg.Classifier.ModelDir, slog.Default())
	m, err := trainer.Retrain(ctx, typ)
	if errors.Is(err, common.ErrInsufficientTrainingData) {
		return common.NewUserError("Not enough categorized history to train; save more results with 'spice extract --save'", err)
	}
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Trained %s model with %d categories", typ, len(m.Classes()))))
	_, _ = fmt.Fprintln(w, cli.SubtleStyle.Render("  "+strings.Join(m.Classes(), ", ")))
	_, _ = fmt.Fprintln(w, cli.FormatInfo("Saved to "+categorize.ModelPath(cfg.Classifier.ModelDir, typ)))
	return nil
}
