package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-extract/internal/cli"
	"github.com/Veraticus/spice-extract/internal/template"
)

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List known receipt templates and statement adapters",
		RunE:  runTemplates,
	}
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pctx, err := buildContext(cfg, false)
	if err != nil {
		return err
	}
	dict := pctx.Dictionary()

	w := cmd.OutOrStdout()
	sections := []string{
		cli.RenderList(cli.ReceiptIcon+" Receipt templates", describe(dict.Templates)),
		cli.RenderList(cli.BankIcon+" Statement dialects", describe(dict.Dialects)),
		cli.RenderList("Statement adapters", pctx.Registry().Entries()),
	}
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s+"\n"); err != nil {
			return fmt.Errorf("failed to write templates: %w", err)
		}
	}
	return nil
}

func describe(set *template.Set) []string {
	items := make([]string, 0, set.Len())
	for _, t := range set.Templates() {
		items = append(items, fmt.Sprintf("%s %s", t.Name, cli.SubtleStyle.Render(fmt.Sprintf("(specificity %d)", t.Specificity))))
	}
	return items
}
