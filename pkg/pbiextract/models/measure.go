package models

// Measure represents a DAX measure defined on a table.
type Measure struct {
	// Name is the measure name.
	Name string `json:"name"`
	// Table is the parent table name.
	Table string `json:"table"`
	// Expression is the normalised DAX expression.
	Expression string `json:"expression"`
	// FormatString is the display format.
	FormatString string `json:"format_string"`
	// LineageTag is the lineage tag.
	LineageTag string `json:"lineage_tag"`
	// Hidden reports the isHidden flag.
	Hidden bool `json:"is_hidden"`
	// Description is the measure description.
	Description string `json:"description"`
	// Annotations lists annotation names.
	Annotations []string `json:"annotations,omitempty"`
}
