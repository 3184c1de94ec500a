package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// ExportFilename is the download name for an export with the given
// title.
func ExportFilename(title string) string {
	return title + ".xlsx"
}

// ExportXLSX writes the selected rows (or all visible rows when
// nothing is selected) as a spreadsheet, restricted to the currently
// visible columns. Serialization failures are returned, never
// swallowed.
func (t *Table[T]) ExportXLSX(w io.Writer) error {
	cols := t.VisibleColumns()
	rows := t.exportRows()

	f := excelize.NewFile()
	defer f.Close()

	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("addressing header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, col.Header); err != nil {
			return fmt.Errorf("writing header %q: %w", col.Header, err)
		}
	}

	for r, row := range rows {
		for c, col := range cols {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("addressing cell: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, col.Value(row)); err != nil {
				return fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("serializing workbook: %w", err)
	}
	return nil
}
