// Package models defines the flat records extracted from a Power BI report.
package models

// NA is the placeholder written for absent fields.
const NA = "N/A"

// ParentRef names the immediate parent of a record for colour grouping.
// It is a display name, not a relational key.
type ParentRef struct {
	// Kind is the parent entity kind (e.g. "Table", "Relationship").
	Kind string `json:"kind,omitempty"`
	// Name is the parent's display name.
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference names no parent.
func (p ParentRef) IsZero() bool {
	return p.Name == "" || p.Name == NA
}

// Row is a single record rendered as strings aligned to its RecordSet headers.
type Row struct {
	// Parent is used to pick the row fill colour.
	Parent ParentRef `json:"parent"`
	// Values holds one cell value per header.
	Values []string `json:"values"`
}

// RecordSet is a titled block of rows sharing one header.
type RecordSet struct {
	// Title is the block or sheet title.
	Title string `json:"title"`
	// Headers is the ordered column header list.
	Headers []string `json:"headers"`
	// Rows contains the data rows.
	Rows []Row `json:"rows,omitempty"`
}

// Len returns the number of data rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Column returns the index of header name, or -1.
func (rs *RecordSet) Column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Append adds a row, padding or trimming values to the header width.
func (rs *RecordSet) Append(parent ParentRef, values ...string) {
	row := make([]string, len(rs.Headers))
	copy(row, values)
	rs.Rows = append(rs.Rows, Row{Parent: parent, Values: row})
}
