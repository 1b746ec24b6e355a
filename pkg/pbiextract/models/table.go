package models

// Table represents a model table.
type Table struct {
	// Name is the table name.
	Name string `json:"name"`
	// Hidden reports the isHidden flag.
	Hidden bool `json:"is_hidden"`
	// Private reports the isPrivate flag.
	Private bool `json:"is_private"`
	// ShowAsVariationsOnly reports the showAsVariationsOnly flag.
	ShowAsVariationsOnly bool `json:"show_as_variations_only"`
	// LineageTag is the lineage tag.
	LineageTag string `json:"lineage_tag"`
	// Description is the table description.
	Description string `json:"description"`
	// Partitions lists child partition names.
	Partitions []string `json:"partitions,omitempty"`
	// Columns lists child column names.
	Columns []string `json:"columns,omitempty"`
	// Measures lists child measure names.
	Measures []string `json:"measures,omitempty"`
	// Hierarchies lists child hierarchy names.
	Hierarchies []string `json:"hierarchies,omitempty"`
}

// Column represents a table column.
type Column struct {
	Name           string   `json:"name"`
	Table          string   `json:"table"`
	DataType       string   `json:"data_type"`
	SourceColumn   string   `json:"source_column"`
	SummarizeBy    string   `json:"summarize_by"`
	Hidden         bool     `json:"is_hidden"`
	IsNameInferred bool     `json:"is_name_inferred"`
	DataCategory   string   `json:"data_category"`
	FormatString   string   `json:"format_string"`
	SortByColumn   string   `json:"sort_by_column"`
	LineageTag     string   `json:"lineage_tag"`
	Expression     string   `json:"expression"`
	Description    string   `json:"description"`
	Annotations    []string `json:"annotations,omitempty"`
	Variations     []string `json:"variations,omitempty"`
}

// Variation represents an alternate hierarchy attached to a column.
type Variation struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	Table            string `json:"table"`
	Relationship     string `json:"relationship"`
	IsDefault        bool   `json:"is_default"`
	DefaultTable     string `json:"default_hierarchy_table"`
	DefaultHierarchy string `json:"default_hierarchy"`
	LineageTag       string `json:"lineage_tag"`
}

// VisibleColumn is a table/column pair of the granular view.
type VisibleColumn struct {
	// Table is the owning table name.
	Table string `json:"table"`
	// Column is the column name.
	Column string `json:"column"`
}
