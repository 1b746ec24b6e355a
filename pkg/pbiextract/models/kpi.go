package models

// KPI is a measure referenced by a visual or defined in the model.
type KPI struct {
	// BaseName is the queryRef or measure name.
	BaseName string `json:"base_name"`
	// Alias is the display name shown in the report.
	Alias string `json:"alias"`
	// Formula is the DAX expression, or the base name when unknown.
	Formula string `json:"formula"`
	// VisualType is the visual's type, or NA for model-only KPIs.
	VisualType string `json:"visual_type"`
	// SourceTable is derived from the queryRef.
	SourceTable string `json:"source_table"`
	// Source is the provenance tag ("Visual (Page)", "Model" or both).
	Source string `json:"source"`
	// Calculated reports whether the reference looked like a measure.
	Calculated bool `json:"calculated"`
}
