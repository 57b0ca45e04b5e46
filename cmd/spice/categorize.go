package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/cli"
	"github.com/Veraticus/spice-extract/internal/model"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <text...>",
		Short: "Show the category assigned to a description",
		Long: `Run a description through the categorization layers and print the answer.
Each argument is categorized separately.

Examples:
  spice categorize "Молоко 3.2%" "Яндекс Go"
  spice categorize --type income "Зарплата за июнь"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().String("type", "expense", "direction of the money (expense or income)")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	typ, err := parseType(typeFlag)
	if err != nil {
		return err
	}
	direction := model.DirectionExpense
	if typ == model.CategoryTypeIncome {
		direction = model.DirectionIncome
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pctx, err := buildContext(cfg, false)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, text := range args {
		text = strings.TrimSpace(text)
		res := pctx.Categorizer().Categorize(categorize.Input{Text: text, Direction: direction})
		rec := model.ExtractedRecord{
			Category:   res.Category,
			Confidence: res.Confidence,
			Layer:      res.Layer,
			Direction:  direction,
		}
		if _, err := fmt.Fprintln(w, cli.RenderPrediction(text, rec)); err != nil {
			return fmt.Errorf("failed to write prediction: %w", err)
		}
	}
	return nil
}
