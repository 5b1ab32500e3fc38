package tools

import (
	"fmt"
	"strings"

	"github.com/rubiogarciadental/iadental/internal/infrastructure/clinicdb"
)

// maxTableRows caps how many rows a result table carries back to the model;
// larger result sets get an elision footer instead.
const maxTableRows = 20

// maxCellWidth truncates oversized cell values so a single long field cannot
// blow up the prompt.
const maxCellWidth = 50

// MarkdownTable renders a query result as a markdown table, the form the
// assistant is prompted to wrap in a table fence when presenting data.
func MarkdownTable(result *clinicdb.Result) string {
	if result == nil || len(result.Rows) == 0 {
		return "_No se encontraron resultados._"
	}

	var b strings.Builder

	b.WriteString("| " + strings.Join(result.Columns, " | ") + " |\n")

	separators := make([]string, len(result.Columns))
	for i := range separators {
		separators[i] = "---"
	}
	b.WriteString("| " + strings.Join(separators, " | ") + " |\n")

	shown := result.Rows
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, row := range shown {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncateCell(cell)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if len(result.Rows) > maxTableRows {
		b.WriteString(fmt.Sprintf("\n_...y %d resultados más_\n", len(result.Rows)-maxTableRows))
	}

	return b.String()
}

// truncateCell caps a cell at maxCellWidth runes. Cutting on bytes would
// split accented characters, which GELITE names are full of.
func truncateCell(cell string) string {
	runes := []rune(cell)
	if len(runes) <= maxCellWidth {
		return cell
	}
	return string(runes[:maxCellWidth])
}
