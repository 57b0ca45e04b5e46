package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// RenderResult formats one document result as a titled record table.
func RenderResult(result *model.DocumentResult) string {
	if result == nil {
		return ""
	}

	icon := ReceiptIcon
	if result.SourceKind == model.SourceStatement {
		icon = BankIcon
	}

	template := result.Template
	if !result.Recognized {
		template += SubtleStyle.Render(" (generic)")
	}

	var header strings.Builder
	fmt.Fprintf(&header, "Template: %s\n", template)
	if !result.TransactionDate.IsZero() {
		fmt.Fprintf(&header, "Date:     %s\n", result.TransactionDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&header, "Total:    %s %s",
		BoldStyle.Render(result.TotalAmount.StringFixed(2)),
		SubtleStyle.Render("("+result.TotalStrategy+")"))

	body := header.String()
	if len(result.Records) > 0 {
		body += "\n\n" + RenderRecords(result.Records)
	} else {
		body += "\n\n" + FormatWarning("No line items found")
	}

	return RenderBox(icon+" "+result.SourceName, body)
}

// RenderRecords lays records out as aligned columns.
func RenderRecords(records []model.ExtractedRecord) string {
	names := []string{TableHeaderStyle.Render("Item")}
	qty := []string{TableHeaderStyle.Render("Qty")}
	amounts := []string{TableHeaderStyle.Render("Amount")}
	categories := []string{TableHeaderStyle.Render("Category")}
	confidence := []string{TableHeaderStyle.Render("Conf")}

	for _, r := range records {
		sign := ""
		if r.Direction == model.DirectionIncome {
			sign = "+"
		}
		names = append(names, TableCellStyle.Render(truncate(r.Name, 40)))
		qty = append(qty, TableCellStyle.Render(strconv.Itoa(r.Quantity)))
		amounts = append(amounts, AmountStyle.Render(sign+r.Amount.StringFixed(2)))
		categories = append(categories, categoryStyle(r).Render(r.Category))
		confidence = append(confidence, TableCellStyle.Render(fmt.Sprintf("%.0f%%", r.Confidence*100)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		column(names),
		column(qty),
		column(amounts, lipgloss.Right),
		column(categories),
		column(confidence, lipgloss.Right),
	)
}

// RenderPrediction formats a single categorization answer.
func RenderPrediction(text string, rec model.ExtractedRecord) string {
	style := categoryStyle(rec)
	layer := rec.Layer
	if layer == "" {
		layer = "none"
	}
	return fmt.Sprintf("%s %s %s %s",
		BoldStyle.Render(text),
		SubtleStyle.Render("→"),
		style.Render(rec.Category),
		SubtleStyle.Render(fmt.Sprintf("(%.0f%%, %s)", rec.Confidence*100, layer)))
}

// RenderList formats a titled bullet list.
func RenderList(title string, items []string) string {
	var b strings.Builder
	b.WriteString(BoldStyle.Render(title))
	for _, item := range items {
		b.WriteString("\n  • " + item)
	}
	return b.String()
}

func categoryStyle(rec model.ExtractedRecord) lipgloss.Style {
	switch {
	case rec.Category == model.OtherCategory:
		return WarningStyle.PaddingRight(2)
	case rec.Direction == model.DirectionIncome:
		return SuccessStyle.PaddingRight(2)
	default:
		return InfoStyle.PaddingRight(2)
	}
}

func column(cells []string, align ...lipgloss.Position) string {
	pos := lipgloss.Left
	if len(align) > 0 {
		pos = align[0]
	}
	return lipgloss.JoinVertical(pos, cells...)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
