// xlsx.go - XLSX rendition of the approved-claims report.
package report

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Approved Claims"

// WriteApprovedXLSX streams the approved-claims report as a workbook.
// Same columns and ordering as the CSV rendition; numeric columns are
// written as numbers so spreadsheet totals work out of the box.
func (g *Generator) WriteApprovedXLSX(ctx context.Context, w io.Writer) error {
	rows, err := g.approvedRows(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := writeHeader(f, sheetName, Header); err != nil {
		return err
	}

	for i := range rows {
		c := &rows[i]
		rowNum := i + 2 // 1-based, after the header

		hours, _ := c.HoursWorked.Float64()
		rate, _ := c.HourlyRate.Float64()
		amount, _ := c.Amount.Float64()

		values := []interface{}{
			c.ID,
			c.LecturerName,
			c.ClaimDate.Format(dateLayout),
			hours,
			rate,
			amount,
			c.Notes,
		}
		for col, v := range values {
			if err := writeCell(f, sheetName, col+1, rowNum, v); err != nil {
				return err
			}
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "resolving cell")
	}
	return errors.Wrapf(f.SetCellValue(sheet, cell, value), "writing %s", cell)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return errors.Wrap(err, "resolving last column")
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	for idx, value := range headers {
		if err := writeCell(f, sheet, idx+1, 1, value); err != nil {
			return err
		}
	}
	return nil
}
