package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// summarySheet is the name of the only sheet in every workbook written here.
const summarySheet = "Summary"

// writeWorkbook writes header and rows as the Summary sheet of a new .xlsx
// workbook. Cells are stored as strings, matching the csv output.
func writeWorkbook(w io.Writer, header []string, rows [][]string) error {
	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName(x.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	for i, r := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = v
		}
		if err := x.SetSheetRow(summarySheet, cell, &vals); err != nil {
			return err
		}
	}
	return x.Write(w)
}
