package workbook

import (
	"strings"

	"github.com/claude/liftplan/internal/models"
)

// CellKind tags what a Cell holds.
type CellKind int

const (
	Blank CellKind = iota
	Text
	Number
	Formula
)

func (k CellKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Text:
		return "text"
	case Number:
		return "number"
	case Formula:
		return "formula"
	}
	return "unknown"
}

// Cell is one spreadsheet cell. Only the field matching Kind is meaningful.
// Formula holds the expression without a leading "=".
type Cell struct {
	Kind    CellKind
	Text    string
	Number  float64
	Formula string
}

func TextCell(s string) Cell { return Cell{Kind: Text, Text: s} }
func NumberCell(f float64) Cell { return Cell{Kind: Number, Number: f} }
func FormulaCell(f string) Cell { return Cell{Kind: Formula, Formula: f} }

// ValueCell transcribes a form field: blank stays blank, numeric text
// becomes a number, anything else is kept as text.
func ValueCell(n models.Number) Cell {
	switch {
	case n.IsBlank():
		return Cell{}
	case n.IsNumeric():
		return NumberCell(n.Float())
	}
	return TextCell(strings.TrimSpace(string(n)))
}
