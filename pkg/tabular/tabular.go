// Package tabular is a reusable in-memory table engine: sorting,
// per-column filters, paging, column visibility, row selection, and
// spreadsheet export over an already-fetched collection. It never
// touches the network; every list screen parameterizes it with a
// column descriptor set instead of reimplementing the mechanics.
package tabular

import (
	"sort"
	"strings"
)

// SortDirection cycles ascending, descending, unsorted.
type SortDirection int

const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

// Column describes one field of the row type. Value produces the
// string used for filtering and export; Less, when set, overrides the
// string comparison for sorting.
type Column[T any] struct {
	ID     string
	Header string
	Value  func(T) string
	Less   func(a, b T) bool
}

// Table holds the interactive view state over one collection.
type Table[T any] struct {
	rows    []T
	rowID   func(T) string
	columns []Column[T]

	pageSize int
	page     int

	sortColumn string
	sortDir    SortDirection

	filters  map[string]string
	hidden   map[string]bool
	selected map[string]bool
}

// New builds a table over rows. rowID must yield a stable identity per
// row; selection is keyed by it.
func New[T any](rows []T, rowID func(T) string, columns []Column[T], pageSize int) *Table[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Table[T]{
		rows:     rows,
		rowID:    rowID,
		columns:  columns,
		pageSize: pageSize,
		page:     1,
		filters:  make(map[string]string),
		hidden:   make(map[string]bool),
		selected: make(map[string]bool),
	}
}

// SetRows swaps the underlying collection. Selection is cleared: it
// belongs to the old collection reference.
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
	t.selected = make(map[string]bool)
	t.page = t.clampPage(t.page)
}

func (t *Table[T]) column(id string) *Column[T] {
	for i := range t.columns {
		if t.columns[i].ID == id {
			return &t.columns[i]
		}
	}
	return nil
}

// Sort cycles the sort state for a column: ascending, then descending,
// then unsorted. Sorting a different column starts at ascending.
func (t *Table[T]) Sort(columnID string) {
	if t.column(columnID) == nil {
		return
	}
	if t.sortColumn != columnID {
		t.sortColumn = columnID
		t.sortDir = Ascending
		return
	}
	switch t.sortDir {
	case Ascending:
		t.sortDir = Descending
	case Descending:
		t.sortDir = Unsorted
		t.sortColumn = ""
	default:
		t.sortDir = Ascending
	}
}

// SortState returns the active sort column and direction.
func (t *Table[T]) SortState() (string, SortDirection) {
	return t.sortColumn, t.sortDir
}

// SetFilter sets a per-column filter. Empty text removes the
// constraint. Filters on different columns combine with AND.
func (t *Table[T]) SetFilter(columnID, text string) {
	if text == "" {
		delete(t.filters, columnID)
	} else {
		t.filters[columnID] = text
	}
	t.page = t.clampPage(t.page)
}

func (t *Table[T]) matches(row T) bool {
	for colID, text := range t.filters {
		col := t.column(colID)
		if col == nil {
			continue
		}
		if !strings.Contains(strings.ToLower(col.Value(row)), strings.ToLower(text)) {
			return false
		}
	}
	return true
}

// filtered returns the rows passing every active filter, sorted per
// the active sort state. Original order is preserved for equal keys
// and for the unsorted state.
func (t *Table[T]) filtered() []T {
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.matches(row) {
			out = append(out, row)
		}
	}

	if t.sortDir == Unsorted || t.sortColumn == "" {
		return out
	}
	col := t.column(t.sortColumn)
	if col == nil {
		return out
	}

	less := col.Less
	if less == nil {
		less = func(a, b T) bool {
			return strings.ToLower(col.Value(a)) < strings.ToLower(col.Value(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if t.sortDir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// FilteredCount returns the number of rows passing the filters.
func (t *Table[T]) FilteredCount() int {
	n := 0
	for _, row := range t.rows {
		if t.matches(row) {
			n++
		}
	}
	return n
}

// TotalPages is ceil(filtered / pageSize), never below 1.
func (t *Table[T]) TotalPages() int {
	n := t.FilteredCount()
	pages := (n + t.pageSize - 1) / t.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (t *Table[T]) clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if max := t.TotalPages(); page > max {
		return max
	}
	return page
}

// SetPage navigates to a page, clamping to [1, TotalPages].
func (t *Table[T]) SetPage(page int) {
	t.page = t.clampPage(page)
}

// Page returns the current page index, re-clamped in case the
// filtered set shrank since the last navigation.
func (t *Table[T]) Page() int {
	t.page = t.clampPage(t.page)
	return t.page
}

// VisibleRows returns the current page of the filtered, sorted
// collection.
func (t *Table[T]) VisibleRows() []T {
	rows := t.filtered()
	page := t.Page()
	start := (page - 1) * t.pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + t.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// SetColumnVisible toggles a column. Hidden columns are excluded from
// exports, which several screens rely on to produce redacted files.
func (t *Table[T]) SetColumnVisible(columnID string, visible bool) {
	if visible {
		delete(t.hidden, columnID)
	} else {
		t.hidden[columnID] = true
	}
}

// VisibleColumns returns the columns currently shown, in declaration
// order.
func (t *Table[T]) VisibleColumns() []Column[T] {
	out := make([]Column[T], 0, len(t.columns))
	for _, col := range t.columns {
		if !t.hidden[col.ID] {
			out = append(out, col)
		}
	}
	return out
}

// ToggleRowSelection flips one row's selection. Selection survives
// sort, filter, and page changes.
func (t *Table[T]) ToggleRowSelection(rowID string) {
	if t.selected[rowID] {
		delete(t.selected, rowID)
	} else {
		t.selected[rowID] = true
	}
}

// SelectAllOnPage selects or deselects every row on the current page.
func (t *Table[T]) SelectAllOnPage(selected bool) {
	for _, row := range t.VisibleRows() {
		id := t.rowID(row)
		if selected {
			t.selected[id] = true
		} else {
			delete(t.selected, id)
		}
	}
}

// ClearSelection drops all selected rows.
func (t *Table[T]) ClearSelection() {
	t.selected = make(map[string]bool)
}

// IsSelected reports one row's selection state.
func (t *Table[T]) IsSelected(rowID string) bool {
	return t.selected[rowID]
}

// SelectedCount returns the number of selected rows.
func (t *Table[T]) SelectedCount() int {
	return len(t.selected)
}

// selectedRows returns selected rows in collection order.
func (t *Table[T]) selectedRows() []T {
	var out []T
	for _, row := range t.rows {
		if t.selected[t.rowID(row)] {
			out = append(out, row)
		}
	}
	return out
}

// exportRows is the row set an export covers: the selection when one
// exists, otherwise everything currently visible after filtering.
func (t *Table[T]) exportRows() []T {
	if len(t.selected) > 0 {
		return t.selectedRows()
	}
	return t.filtered()
}
