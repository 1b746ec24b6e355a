package models

// Relationship represents a model relationship between two columns.
type Relationship struct {
	// Name is the relationship name.
	Name string `json:"name"`
	// FromTable is the many-side table.
	FromTable string `json:"from_table"`
	// FromColumn is the many-side column.
	FromColumn string `json:"from_column"`
	// ToTable is the one-side table.
	ToTable string `json:"to_table"`
	// ToColumn is the one-side column.
	ToColumn string `json:"to_column"`
	// Type is the cardinality type.
	Type string `json:"type"`
	// CrossFilteringBehavior is the cross filter direction.
	CrossFilteringBehavior string `json:"cross_filtering_behavior"`
	// Active reports the isActive flag (true when absent).
	Active bool `json:"is_active"`
	// JoinOnDateBehavior is the date join behaviour.
	JoinOnDateBehavior string `json:"join_on_date_behavior"`
	// LineageTag is the lineage tag.
	LineageTag string `json:"lineage_tag"`
	// Annotations lists annotation names.
	Annotations []string `json:"annotations,omitempty"`
}

// Culture represents a model culture and its linguistic metadata.
type Culture struct {
	// Name is the culture name (e.g. en-US).
	Name string `json:"name"`
	// Content maps linguisticMetadata.content keys to stringified values.
	Content map[string]string `json:"content,omitempty"`
	// ContentType is linguisticMetadata.contentType, empty when no metadata.
	ContentType string `json:"content_type,omitempty"`
	// HasMetadata reports whether linguisticMetadata was present.
	HasMetadata bool `json:"has_metadata"`
}
