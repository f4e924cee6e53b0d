package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mcncl/kyopro/internal/models"
	"github.com/mcncl/kyopro/internal/problems"
)

// Formatter renders JSON values and problem listings for the terminal
type Formatter struct {
	indent int
}

// NewFormatter creates a new Formatter. indent is the number of spaces used
// per JSON nesting level; zero produces compact output.
func NewFormatter(indent int) *Formatter {
	if indent < 0 {
		indent = 0
	}
	return &Formatter{indent: indent}
}

// FormatJSON marshals v keeping object key order.
func (f *Formatter) FormatJSON(v models.Value) (string, error) {
	if v == nil {
		v = models.Null{}
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	if f.indent == 0 {
		return string(raw), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", strings.Repeat(" ", f.indent)); err != nil {
		return "", fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.String(), nil
}

// FormatProblemsJSON renders a page of problems as a JSON array.
func (f *Formatter) FormatProblemsJSON(page problems.Page) (string, error) {
	records := page.Records
	if records == nil {
		records = []problems.Problem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", f.indent))
	}
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("failed to encode problems: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// FormatTable renders a page of problems as a bordered table followed by a
// one-line summary. Missing numeric values are shown as "-".
func (f *Formatter) FormatTable(page problems.Page) string {
	rows := make([][]string, 0, len(page.Records))
	for _, p := range page.Records {
		rows = append(rows, []string{
			p.ContestName,
			p.Title,
			formatFloat(p.Difficulty),
			formatFloat(p.RawPoint),
			formatInt(p.SolverCount),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Contest", "Title", "Difficulty", "Point", "Solvers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String() + "\n" + Summary(page)
}

// Summary describes the position of page within the listing.
func Summary(page problems.Page) string {
	noun := "problems"
	if page.TotalRecords == 1 {
		noun = "problem"
	}
	return fmt.Sprintf("page %d/%d (%d %s)", page.Page, page.TotalPages, page.TotalRecords, noun)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
