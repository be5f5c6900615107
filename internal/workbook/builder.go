// Package workbook builds the two-sheet spreadsheet export of a plan. The
// Details sheet transcribes the inputs; every weight on the Plan sheet is a
// formula over Details so edits made in the spreadsheet flow through.
package workbook

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/claude/liftplan/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	DetailsSheet = "Details"
	PlanSheet    = "Plan"
)

var (
	ErrTooManyWeeks     = errors.New("workbook: too many weeks for one sheet")
	ErrTooManyExercises = errors.New("workbook: too many exercises for one sheet")
)

// Sheet is a named grid of cells. Every row has the same width as the header.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Dims returns the row and column count.
func (s *Sheet) Dims() (rows, cols int) {
	if len(s.Rows) == 0 {
		return 0, 0
	}
	return len(s.Rows), len(s.Rows[0])
}

// Cell returns the cell at zero-based coordinates, or a blank cell outside
// the grid.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return Cell{}
	}
	return s.Rows[row][col]
}

// Workbook is the built export, ready to be written.
type Workbook struct {
	Details  Sheet
	Plan     Sheet
	Weeks    int
	Warnings []models.Warning
}

// Builder holds the sheet names. The same names title the sheets and
// prefix every formula reference.
type Builder struct {
	DetailsName string
	PlanName    string
}

// DefaultBuilder names the sheets Details and Plan.
var DefaultBuilder = Builder{DetailsName: DetailsSheet, PlanName: PlanSheet}

// Build projects exercises into a workbook using DefaultBuilder.
func Build(exercises []models.Exercise) (*Workbook, error) {
	return DefaultBuilder.Build(exercises)
}

// Validate checks both names are usable as distinct sheet names.
func (b Builder) Validate() error {
	for _, name := range []string{b.DetailsName, b.PlanName} {
		if err := checkSheetName(name); err != nil {
			return fmt.Errorf("sheet name %q: %w", name, err)
		}
	}
	if strings.EqualFold(b.DetailsName, b.PlanName) {
		return fmt.Errorf("sheet names must differ, both are %q", b.DetailsName)
	}
	return nil
}

// Build lays out the Details and Plan sheets. The first exercise's week
// count sets the columns. Exercises with fewer weeks leave blank Details
// cells, whose formulas evaluate to 0. Extra weeks are dropped. Both cases
// are reported in Warnings.
func (b Builder) Build(exercises []models.Exercise) (*Workbook, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	weeks := models.WeekCount(exercises)
	if detailsWidth(weeks) > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: %d", ErrTooManyWeeks, weeks)
	}
	if dataRow(len(exercises)) > excelize.TotalRows {
		return nil, fmt.Errorf("%w: %d", ErrTooManyExercises, len(exercises))
	}

	wb := &Workbook{
		Details:  Sheet{Name: b.DetailsName, Rows: make([][]Cell, 0, dataRow(len(exercises)))},
		Plan:     Sheet{Name: b.PlanName, Rows: make([][]Cell, 0, dataRow(len(exercises)))},
		Weeks:    weeks,
		Warnings: models.CheckWeeks(exercises),
	}
	if wb.Warnings == nil {
		wb.Warnings = []models.Warning{}
	}

	wb.Details.Rows = append(wb.Details.Rows, detailsHeader(weeks))
	wb.Plan.Rows = append(wb.Plan.Rows, planHeader(weeks))
	for i, ex := range exercises {
		wb.Details.Rows = append(wb.Details.Rows, detailsRow(ex, weeks))
		wb.Plan.Rows = append(wb.Plan.Rows, b.planRow(i, ex, weeks))
	}
	return wb, nil
}

// checkSheetName applies the same rules excelize enforces when a sheet is
// created, so a bad name fails before any cells are built.
func checkSheetName(name string) error {
	switch {
	case name == "":
		return excelize.ErrSheetNameBlank
	case utf8.RuneCountInString(name) > excelize.MaxSheetNameLength:
		return excelize.ErrSheetNameLength
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return excelize.ErrSheetNameSingleQuote
	case strings.ContainsAny(name, ":\\/?*[]"):
		return excelize.ErrSheetNameInvalid
	}
	return nil
}

func detailsHeader(weeks int) []Cell {
	row := make([]Cell, detailsWidth(weeks))
	row[colName] = TextCell("Exercise")
	row[colTrainingMax] = TextCell("Training Max")
	for w := 0; w < weeks; w++ {
		row[detailsCol(w, models.FieldPct)] = TextCell(fmt.Sprintf("Week %d %%", w+1))
		row[detailsCol(w, models.FieldSets)] = TextCell(fmt.Sprintf("Week %d Sets", w+1))
		row[detailsCol(w, models.FieldReps)] = TextCell(fmt.Sprintf("Week %d Reps", w+1))
	}
	return row
}

func planHeader(weeks int) []Cell {
	row := make([]Cell, planWidth(weeks))
	row[colName] = TextCell("Exercise")
	for w := 0; w < weeks; w++ {
		row[planCol(w)] = TextCell(fmt.Sprintf("Week %d", w+1))
	}
	return row
}

func detailsRow(ex models.Exercise, weeks int) []Cell {
	row := make([]Cell, detailsWidth(weeks))
	row[colName] = TextCell(ex.DisplayName())
	row[colTrainingMax] = ValueCell(ex.TrainingMax)
	for w := 0; w < weeks; w++ {
		detail, ok := ex.Week(w)
		if !ok {
			continue
		}
		for _, f := range []models.WeekField{models.FieldPct, models.FieldSets, models.FieldReps} {
			row[detailsCol(w, f)] = ValueCell(detail.Get(f))
		}
	}
	return row
}

func (b Builder) planRow(i int, ex models.Exercise, weeks int) []Cell {
	row := make([]Cell, planWidth(weeks))
	row[colName] = TextCell(ex.DisplayName())
	for w := 0; w < weeks; w++ {
		row[planCol(w)] = FormulaCell(b.weightFormula(i, w))
	}
	return row
}

// weightFormula rounds training max × percentage / 100 to the nearest 5,
// reading both from the exercise's Details row.
func (b Builder) weightFormula(exercise, week int) string {
	r := dataRow(exercise)
	tm := sheetRef(b.DetailsName, r, colTrainingMax)
	pct := sheetRef(b.DetailsName, r, detailsCol(week, models.FieldPct))
	return fmt.Sprintf("MROUND(%s*%s/100,5)", tm, pct)
}
