package board

import "strings"

const (
	// DefaultActiveColumn is the first column counted as work in progress.
	DefaultActiveColumn = "IN PROGRESS"
	// DefaultTerminalColumn is the column that marks completion.
	DefaultTerminalColumn = "DONE"
)

// DefaultReportingColumns is the fixed CFD column set, in output order.
var DefaultReportingColumns = []string{
	"DONE",
	"TESTING",
	"READY TO TEST",
	"CODE REVIEW",
	"IN PROGRESS",
	"READY TO DEV",
}

// Column is a workflow stage and its position on the board.
type Column struct {
	Index int
	Name  string
}

// Schema is the ordered set of board columns.
type Schema struct {
	Columns []Column
}

// NewSchema indexes names by position.
func NewSchema(names ...string) Schema {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Index: i, Name: n}
	}
	return Schema{Columns: cols}
}

func (s Schema) Len() int { return len(s.Columns) }

// Contains reports whether idx addresses a column of the schema.
func (s Schema) Contains(idx int) bool {
	return idx >= 0 && idx < len(s.Columns)
}

// IndexOf finds the first column whose name matches, ignoring case and
// surrounding whitespace.
func (s Schema) IndexOf(name string) (int, bool) {
	for _, c := range s.Columns {
		if SameColumn(c.Name, name) {
			return c.Index, true
		}
	}
	return -1, false
}

// Names returns the column names in board order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// SameColumn compares two column names case-insensitively.
func SameColumn(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Markers names the columns that carry metric meaning.
type Markers struct {
	Active   string
	Terminal string
}

// DefaultMarkers returns the IN PROGRESS / DONE marker pair.
func DefaultMarkers() Markers {
	return Markers{Active: DefaultActiveColumn, Terminal: DefaultTerminalColumn}
}

// Resolution holds marker indices resolved against a schema.
type Resolution struct {
	Markers       Markers
	Active        int
	ActiveFound   bool
	Terminal      int
	TerminalFound bool
}

// Resolve looks up the markers in the schema. Unresolved markers are
// reported as -1 with the matching Found flag unset.
func (s Schema) Resolve(m Markers) Resolution {
	r := Resolution{Markers: m}
	r.Active, r.ActiveFound = s.IndexOf(m.Active)
	r.Terminal, r.TerminalFound = s.IndexOf(m.Terminal)
	return r
}
