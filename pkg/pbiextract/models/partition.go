package models

// MSource is the best-effort information mined from an M expression.
type MSource struct {
	// Path is the File.Contents argument, or NA.
	Path string `json:"path"`
	// Table is the source item name or the file base name, or NA.
	Table string `json:"table"`
	// Expression is the expression truncated for display.
	Expression string `json:"expression"`
	// Filters joins every Table.SelectRows condition with " ; ", or NA.
	Filters string `json:"filters"`
}

// Partition represents a table partition and its data source.
type Partition struct {
	// Name is the partition name.
	Name string `json:"name"`
	// Table is the parent table name.
	Table string `json:"table"`
	// Mode is the storage mode (import, directQuery, ...).
	Mode string `json:"mode"`
	// SourceType is the source.type value.
	SourceType string `json:"source_type"`
	// Source holds what was extracted from source.expression.
	Source MSource `json:"source"`
	// LineageTag is the lineage tag.
	LineageTag string `json:"lineage_tag"`
}
