package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/charmbracelet/lipgloss"
)

type column struct {
	title string
	width int
	align lipgloss.Position
}

type cell struct {
	style *lipgloss.Style
	text  string
}

func plain(text string) cell { return cell{text: text} }

func styled(style lipgloss.Style, text string) cell { return cell{text: text, style: &style} }

// renderTable writes fixed-width rows under a bold header. Cells longer than
// their column are truncated with an ellipsis.
func renderTable(w io.Writer, cols []column, rows [][]cell) error {
	var b strings.Builder

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = pad(col.title, col)
	}
	b.WriteString(TableHeaderStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	for _, row := range rows {
		parts := make([]string, len(cols))
		for i, col := range cols {
			var c cell
			if i < len(row) {
				c = row[i]
			}
			text := pad(c.text, col)
			if c.style != nil {
				text = c.style.Render(text)
			}
			parts[i] = text
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func pad(text string, col column) string {
	return lipgloss.NewStyle().Width(col.width).Align(col.align).Render(truncate(text, col.width))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

// transactionLabel prefers the merchant name and falls back to the description.
func transactionLabel(txn model.Transaction) string {
	if m := strings.TrimSpace(txn.MerchantName); m != "" {
		return m
	}
	return strings.TrimSpace(txn.Description)
}

func formatAmount(txn model.Transaction) string {
	if !txn.Amount.Valid {
		return "—"
	}
	return txn.Amount.Decimal.StringFixed(2)
}

// RenderResults writes one row per batch result in input order.
func RenderResults(w io.Writer, results []engine.Result) error {
	cols := []column{
		{title: "#", width: 4, align: lipgloss.Right},
		{title: "Transaction", width: 32},
		{title: "Amount", width: 11, align: lipgloss.Right},
		{title: "Category", width: 18},
		{title: "Method", width: 9},
		{title: "Conf", width: 5, align: lipgloss.Right},
	}

	rows := make([][]cell, 0, len(results))
	for i, r := range results {
		row := []cell{
			plain(fmt.Sprintf("%d", i+1)),
			plain(transactionLabel(r.Transaction)),
			plain(formatAmount(r.Transaction)),
		}
		if r.Err != nil {
			row = append(row, styled(ErrorStyle, ErrorIcon+" "+r.Err.Error()))
		} else {
			row = append(row,
				plain(r.Match.CategoryID),
				styled(MethodStyle(r.Match.Method), string(r.Match.Method)),
				plain(FormatConfidence(r.Match.Confidence)),
			)
		}
		rows = append(rows, row)
	}

	return renderTable(w, cols, rows)
}

// RenderStats formats batch statistics as a box.
func RenderStats(stats engine.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total transactions: %d\n", stats.Total)
	fmt.Fprintf(&b, "Categorized: %d\n", stats.Categorized)
	if stats.Failed > 0 {
		fmt.Fprintf(&b, "%s\n", ErrorStyle.Render(fmt.Sprintf("Failed: %d", stats.Failed)))
	}
	fmt.Fprintf(&b, "Average confidence: %s\n", FormatConfidence(stats.AverageConfidence))

	b.WriteString("\nBy method:\n")
	for _, m := range model.Methods {
		count := stats.ByMethod[m]
		share := 0.0
		if stats.Categorized > 0 {
			share = float64(count) / float64(stats.Categorized) * 100
		}
		fmt.Fprintf(&b, "  • %s %d (%.1f%%)\n", MethodStyle(m).Render(fmt.Sprintf("%-8s", m)), count, share)
	}

	if len(stats.ByCategory) > 0 {
		b.WriteString("\nBy category:\n")
		categories := make([]string, 0, len(stats.ByCategory))
		for id := range stats.ByCategory {
			categories = append(categories, id)
		}
		sort.Slice(categories, func(i, j int) bool {
			ci, cj := stats.ByCategory[categories[i]], stats.ByCategory[categories[j]]
			if ci != cj {
				return ci > cj
			}
			return categories[i] < categories[j]
		})
		for _, id := range categories {
			fmt.Fprintf(&b, "  • %s: %d\n", id, stats.ByCategory[id])
		}
	}

	if len(stats.TopMerchants) > 0 {
		b.WriteString("\nTop merchants:\n")
		for _, m := range stats.TopMerchants {
			fmt.Fprintf(&b, "  • %s: %d\n", m.MerchantKey, m.Count)
		}
	}

	return RenderBox(ChartIcon+" Categorization Summary", strings.TrimRight(b.String(), "\n"))
}

// RenderMerchants writes merchant mappings.
func RenderMerchants(w io.Writer, mappings []model.MerchantMapping) error {
	cols := []column{
		{title: "Merchant", width: 28},
		{title: "Category", width: 20},
		{title: "Source", width: 8},
		{title: "Uses", width: 5, align: lipgloss.Right},
	}
	rows := make([][]cell, 0, len(mappings))
	for _, m := range mappings {
		source := plain(string(m.Source))
		if m.Source == model.SourceSeed {
			source = styled(SubtleStyle, string(m.Source))
		}
		rows = append(rows, []cell{
			plain(m.MerchantKey),
			plain(m.CategoryID),
			source,
			plain(fmt.Sprintf("%d", m.UseCount)),
		})
	}
	return renderTable(w, cols, rows)
}

// RenderRules writes rules in evaluation order.
func RenderRules(w io.Writer, rules []model.Rule) error {
	cols := []column{
		{title: "Pos", width: 4, align: lipgloss.Right},
		{title: "ID", width: 36},
		{title: "Category", width: 16},
		{title: "Pattern", width: 50},
	}
	rows := make([][]cell, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []cell{
			plain(fmt.Sprintf("%d", r.Position)),
			styled(SubtleStyle, r.ID),
			plain(r.CategoryID),
			plain(r.Pattern),
		})
	}
	return renderTable(w, cols, rows)
}

// RenderCategories writes categories.
func RenderCategories(w io.Writer, categories []model.Category) error {
	cols := []column{
		{title: "ID", width: 18},
		{title: "Name", width: 18},
		{title: "Type", width: 8},
		{title: "Description", width: 40},
	}
	rows := make([][]cell, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []cell{
			plain(c.ID),
			plain(c.Name),
			plain(string(c.Type)),
			styled(SubtleStyle, c.Description),
		})
	}
	return renderTable(w, cols, rows)
}

// RenderCorrections writes the correction log.
func RenderCorrections(w io.Writer, corrections []model.Correction) error {
	cols := []column{
		{title: "When", width: 16},
		{title: "Transaction", width: 28},
		{title: "Was", width: 16},
		{title: "Now", width: 16},
	}
	rows := make([][]cell, 0, len(corrections))
	for _, c := range corrections {
		label := c.MerchantKey
		if label == "" {
			label = c.Description
		}
		was := c.PreviousCategoryID
		if was == "" {
			was = "—"
		}
		rows = append(rows, []cell{
			plain(c.CreatedAt.Local().Format("2006-01-02 15:04")),
			plain(label),
			styled(SubtleStyle, was),
			styled(SuccessStyle, c.CategoryID),
		})
	}
	return renderTable(w, cols, rows)
}
