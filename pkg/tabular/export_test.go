package tabular

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func exportAndRead(t *testing.T, tbl *Table[row]) [][]string {
	t.Helper()

	var buf bytes.Buffer
	if err := tbl.ExportXLSX(&buf); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reading exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	return rows
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("lab-queue"); got != "lab-queue.xlsx" {
		t.Errorf("ExportFilename() = %q, want lab-queue.xlsx", got)
	}
}

// The exported field set is exactly the visible columns, for any
// combination of hidden columns.
func TestExportRestrictedToVisibleColumns(t *testing.T) {
	tbl := newTable(100)
	tbl.SetColumnVisible("id", false)
	tbl.SetColumnVisible("dept", false)

	sheet := exportAndRead(t, tbl)
	if len(sheet) != 8 {
		t.Fatalf("sheet has %d rows, want header + 7", len(sheet))
	}

	header := sheet[0]
	if len(header) != 1 || header[0] != "Name" {
		t.Fatalf("header = %v, want [Name]", header)
	}
	if sheet[1][0] != "Amina" {
		t.Errorf("first data row = %v, want Amina", sheet[1])
	}
}

func TestExportSelectedRowsOnly(t *testing.T) {
	tbl := newTable(3)
	tbl.ToggleRowSelection("2")
	tbl.ToggleRowSelection("5")

	sheet := exportAndRead(t, tbl)
	if len(sheet) != 3 {
		t.Fatalf("sheet has %d rows, want header + 2 selected", len(sheet))
	}
	if sheet[1][1] != "Bayo" || sheet[2][1] != "Efe" {
		t.Errorf("exported rows = %v, want Bayo then Efe", sheet[1:])
	}
}

// With nothing selected the export falls back to the filtered set,
// ignoring pagination.
func TestExportFallsBackToVisibleRows(t *testing.T) {
	tbl := newTable(3)
	tbl.SetFilter("dept", "lab")

	sheet := exportAndRead(t, tbl)
	if len(sheet) != 4 {
		t.Fatalf("sheet has %d rows, want header + 3 filtered", len(sheet))
	}
}
