package tabular

import (
	"strconv"
	"testing"
)

type row struct {
	id   string
	name string
	dept string
}

func columns() []Column[row] {
	return []Column[row]{
		{ID: "id", Header: "ID", Value: func(r row) string { return r.id }},
		{ID: "name", Header: "Name", Value: func(r row) string { return r.name }},
		{ID: "dept", Header: "Department", Value: func(r row) string { return r.dept }},
	}
}

func sevenRows() []row {
	return []row{
		{"1", "Amina", "triage"},
		{"2", "Bayo", "lab"},
		{"3", "Chidi", "pharmacy"},
		{"4", "Dayo", "lab"},
		{"5", "Efe", "billing"},
		{"6", "Folake", "triage"},
		{"7", "Gozie", "lab"},
	}
}

func newTable(pageSize int) *Table[row] {
	return New(sevenRows(), func(r row) string { return r.id }, columns(), pageSize)
}

func ids(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func assertIDs(t *testing.T, got []row, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("rows = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("rows = %v, want %v", gotIDs, want)
		}
	}
}

func TestEmptyFilterIsIdentity(t *testing.T) {
	tbl := newTable(100)
	tbl.SetFilter("name", "")
	if tbl.FilteredCount() != 7 {
		t.Errorf("FilteredCount() = %d, want 7", tbl.FilteredCount())
	}
	assertIDs(t, tbl.VisibleRows(), "1", "2", "3", "4", "5", "6", "7")
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	tbl := newTable(100)
	tbl.SetFilter("name", "AY")
	assertIDs(t, tbl.VisibleRows(), "2", "4")
}

func TestFiltersCombineWithAND(t *testing.T) {
	tbl := newTable(100)
	tbl.SetFilter("dept", "lab")
	tbl.SetFilter("name", "o")
	assertIDs(t, tbl.VisibleRows(), "2", "4", "7")

	tbl.SetFilter("name", "ayo")
	assertIDs(t, tbl.VisibleRows(), "2", "4")

	// Removing one constraint widens the result again.
	tbl.SetFilter("name", "")
	assertIDs(t, tbl.VisibleRows(), "2", "4", "7")
}

// Filtering while on a late page must clamp down to a valid page, not
// render an empty one.
func TestPageClampsWhenFilterShrinksSet(t *testing.T) {
	tbl := newTable(3)
	tbl.SetPage(3)
	if tbl.Page() != 3 {
		t.Fatalf("Page() = %d, want 3", tbl.Page())
	}

	tbl.SetFilter("name", "ayo") // narrows 7 rows to 2
	if tbl.TotalPages() != 1 {
		t.Errorf("TotalPages() = %d, want 1", tbl.TotalPages())
	}
	if tbl.Page() != 1 {
		t.Errorf("Page() = %d, want 1 after clamp", tbl.Page())
	}
	if len(tbl.VisibleRows()) != 2 {
		t.Errorf("visible rows = %d, want 2", len(tbl.VisibleRows()))
	}
}

func TestSetPageClampsToBounds(t *testing.T) {
	tbl := newTable(3) // 7 rows, 3 pages
	tbl.SetPage(99)
	if tbl.Page() != 3 {
		t.Errorf("Page() = %d, want 3", tbl.Page())
	}
	tbl.SetPage(-5)
	if tbl.Page() != 1 {
		t.Errorf("Page() = %d, want 1", tbl.Page())
	}
}

func TestPagination(t *testing.T) {
	tbl := newTable(3)
	assertIDs(t, tbl.VisibleRows(), "1", "2", "3")
	tbl.SetPage(2)
	assertIDs(t, tbl.VisibleRows(), "4", "5", "6")
	tbl.SetPage(3)
	assertIDs(t, tbl.VisibleRows(), "7")
}

func TestSortCycle(t *testing.T) {
	tbl := newTable(100)

	tbl.Sort("dept")
	if col, dir := tbl.SortState(); col != "dept" || dir != Ascending {
		t.Fatalf("after 1st toggle: %s %v, want dept Ascending", col, dir)
	}
	tbl.Sort("dept")
	if _, dir := tbl.SortState(); dir != Descending {
		t.Fatalf("after 2nd toggle: %v, want Descending", dir)
	}
	tbl.Sort("dept")
	if col, dir := tbl.SortState(); dir != Unsorted || col != "" {
		t.Fatalf("after 3rd toggle: %s %v, want unsorted", col, dir)
	}

	// Back to original order once unsorted.
	assertIDs(t, tbl.VisibleRows(), "1", "2", "3", "4", "5", "6", "7")
}

func TestSortSwitchingColumnsStartsAscending(t *testing.T) {
	tbl := newTable(100)
	tbl.Sort("name")
	tbl.Sort("name") // descending
	tbl.Sort("dept")
	if col, dir := tbl.SortState(); col != "dept" || dir != Ascending {
		t.Errorf("sort state = %s %v, want dept Ascending", col, dir)
	}
}

// Rows with equal sort keys keep their original relative order.
func TestSortIsStable(t *testing.T) {
	tbl := newTable(100)
	tbl.Sort("dept")
	// billing(5), lab(2,4,7), pharmacy(3), triage(1,6)
	assertIDs(t, tbl.VisibleRows(), "5", "2", "4", "7", "3", "1", "6")

	tbl.Sort("dept") // descending keeps ties in original order too
	assertIDs(t, tbl.VisibleRows(), "1", "6", "3", "2", "4", "7", "5")
}

func TestSortWithCustomComparator(t *testing.T) {
	rows := []row{{"10", "a", "x"}, {"2", "b", "x"}, {"1", "c", "x"}}
	cols := []Column[row]{{
		ID: "id", Header: "ID",
		Value: func(r row) string { return r.id },
		Less: func(a, b row) bool {
			ai, _ := strconv.Atoi(a.id)
			bi, _ := strconv.Atoi(b.id)
			return ai < bi
		},
	}}
	tbl := New(rows, func(r row) string { return r.id }, cols, 100)
	tbl.Sort("id")
	assertIDs(t, tbl.VisibleRows(), "1", "2", "10")
}

func TestSelectionSurvivesSortFilterAndPaging(t *testing.T) {
	tbl := newTable(3)
	tbl.ToggleRowSelection("4")
	tbl.ToggleRowSelection("6")

	tbl.Sort("name")
	tbl.SetFilter("dept", "lab")
	tbl.SetPage(1)
	tbl.SetFilter("dept", "")

	if !tbl.IsSelected("4") || !tbl.IsSelected("6") {
		t.Error("selection lost across sort/filter/page changes")
	}
	if tbl.SelectedCount() != 2 {
		t.Errorf("SelectedCount() = %d, want 2", tbl.SelectedCount())
	}

	tbl.ToggleRowSelection("4")
	if tbl.IsSelected("4") {
		t.Error("toggle did not deselect")
	}
}

func TestSelectAllOnPage(t *testing.T) {
	tbl := newTable(3)
	tbl.SelectAllOnPage(true)
	if tbl.SelectedCount() != 3 {
		t.Errorf("SelectedCount() = %d, want 3", tbl.SelectedCount())
	}

	tbl.SetPage(2)
	tbl.SelectAllOnPage(true)
	if tbl.SelectedCount() != 6 {
		t.Errorf("SelectedCount() = %d, want 6", tbl.SelectedCount())
	}

	tbl.SelectAllOnPage(false)
	if tbl.SelectedCount() != 3 {
		t.Errorf("SelectedCount() = %d after deselect, want 3", tbl.SelectedCount())
	}
}

// Swapping the collection reference clears selection.
func TestSetRowsClearsSelection(t *testing.T) {
	tbl := newTable(3)
	tbl.ToggleRowSelection("1")
	tbl.SetRows(sevenRows())
	if tbl.SelectedCount() != 0 {
		t.Errorf("SelectedCount() = %d after SetRows, want 0", tbl.SelectedCount())
	}
}

func TestColumnVisibility(t *testing.T) {
	tbl := newTable(100)
	tbl.SetColumnVisible("dept", false)

	visible := tbl.VisibleColumns()
	if len(visible) != 2 {
		t.Fatalf("visible columns = %d, want 2", len(visible))
	}
	for _, col := range visible {
		if col.ID == "dept" {
			t.Error("hidden column still visible")
		}
	}

	tbl.SetColumnVisible("dept", true)
	if len(tbl.VisibleColumns()) != 3 {
		t.Error("column not restored")
	}
}
