// Package survey reads survey-response exports into a table of named columns.
//
// A Table is the only shape the matching pipeline consumes: an ordered list of
// headers plus one map per row. Cells missing from short rows arrive as empty
// strings, never as absent keys.
package survey

// Row maps a column header to its cell value.
type Row map[string]string

// Get returns the cell under header, or "" when the row has no such column.
func (r Row) Get(header string) string {
	return r[header]
}

// Table is a header-addressed view of a survey export.
type Table struct {
	// Source is the path the table was read from, for diagnostics.
	Source string

	// Headers lists the column headers in export order.
	Headers []string

	// Rows holds one entry per response, in export order.
	Rows []Row
}

// HasColumn reports whether the table carries a column with the exact header.
func (t *Table) HasColumn(header string) bool {
	for _, h := range t.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// Len returns the number of response rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// NewTable builds a Table from a header record and raw records. Short records
// are padded with empty cells; cells beyond the header count are dropped.
// Duplicate headers keep the value of their last occurrence.
func NewTable(source string, headers []string, records [][]string) *Table {
	t := &Table{
		Source:  source,
		Headers: headers,
		Rows:    make([]Row, 0, len(records)),
	}
	for _, rec := range records {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
