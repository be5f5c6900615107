package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Filename is the name the export is offered under.
const Filename = "workout_plan.xlsx"

// ContentType is the MIME type of the written file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// File renders the workbook into a new excelize file. The caller closes it.
func (wb *Workbook) File() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", wb.Details.Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet %q: %w", wb.Details.Name, err)
	}
	if _, err := f.NewSheet(wb.Plan.Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet %q: %w", wb.Plan.Name, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for _, s := range []*Sheet{&wb.Details, &wb.Plan} {
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the workbook as xlsx to w.
func (wb *Workbook) Write(w io.Writer) error {
	f, err := wb.File()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// SaveAs renders the workbook as xlsx to path.
func (wb *Workbook) SaveAs(path string) error {
	f, err := wb.File()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, s *Sheet, headerStyle int) error {
	for r, row := range s.Rows {
		for c, cell := range row {
			ref := cellName(r, c)
			var err error
			switch cell.Kind {
			case Text:
				err = f.SetCellStr(s.Name, ref, cell.Text)
			case Number:
				err = f.SetCellFloat(s.Name, ref, cell.Number, -1, 64)
			case Formula:
				err = f.SetCellFormula(s.Name, ref, cell.Formula)
			}
			if err != nil {
				return fmt.Errorf("cell %s: %w", ref, err)
			}
		}
	}

	rows, cols := s.Dims()
	if rows == 0 {
		return nil
	}
	last := cellName(0, cols-1)
	if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(s.Name, "A", "A", 24); err != nil {
		return err
	}
	if cols > 1 {
		first, _ := excelize.ColumnNumberToName(2)
		lastCol, _ := excelize.ColumnNumberToName(cols)
		if err := f.SetColWidth(s.Name, first, lastCol, 14); err != nil {
			return err
		}
	}
	return f.SetPanes(s.Name, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
