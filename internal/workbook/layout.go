package workbook

import (
	"regexp"
	"strings"

	"github.com/claude/liftplan/internal/models"
	"github.com/xuri/excelize/v2"
)

// Sheet coordinates are zero-based here and converted to A1 names only in
// cellName. Both sheet builders and every formula go through these helpers.
const (
	colName        = 0
	colTrainingMax = 1
	firstWeekCol   = 2
	colsPerWeek    = 3

	planFirstWeekCol = 1
)

// fieldOffset is the position of a week field inside its Details column group.
var fieldOffset = map[models.WeekField]int{
	models.FieldPct:  0,
	models.FieldSets: 1,
	models.FieldReps: 2,
}

// dataRow is the sheet row of exercise i; row 0 is the header.
func dataRow(exercise int) int {
	return exercise + 1
}

// detailsCol is the Details column of a week field.
func detailsCol(week int, f models.WeekField) int {
	return firstWeekCol + week*colsPerWeek + fieldOffset[f]
}

func planCol(week int) int {
	return planFirstWeekCol + week
}

func detailsWidth(weeks int) int {
	return firstWeekCol + weeks*colsPerWeek
}

func planWidth(weeks int) int {
	return planFirstWeekCol + weeks
}

// cellName converts zero-based coordinates to an A1 reference. Callers
// bound the grid to excelize limits first.
func cellName(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// sheetRef returns a cross-sheet reference such as Details!B2, quoting the
// sheet name when it is not a plain identifier.
func sheetRef(sheet string, row, col int) string {
	return quoteSheet(sheet) + "!" + cellName(row, col)
}

func quoteSheet(name string) string {
	if plainSheetName(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// plainSheetName reports whether name can appear unquoted in a formula: it
// starts with a letter or underscore, has only letters, digits, dots and
// underscores, and does not itself read as a cell reference like AB12 or
// R1C1.
func plainSheetName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case i > 0 && (r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	if _, _, err := excelize.CellNameToCoordinates(name); err == nil {
		return false
	}
	return !r1c1Ref.MatchString(name)
}

var r1c1Ref = regexp.MustCompile(`^([Rr][0-9]*)?([Cc][0-9]*)?$`)
