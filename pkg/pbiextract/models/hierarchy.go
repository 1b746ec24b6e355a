package models

// Hierarchy represents a user hierarchy on a table.
type Hierarchy struct {
	Name        string   `json:"name"`
	Table       string   `json:"table"`
	LineageTag  string   `json:"lineage_tag"`
	Hidden      bool     `json:"is_hidden"`
	Levels      []string `json:"levels,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
}

// HierarchyLevel represents one level of a hierarchy.
type HierarchyLevel struct {
	Name        string   `json:"name"`
	Hierarchy   string   `json:"hierarchy"`
	Table       string   `json:"table"`
	Ordinal     string   `json:"ordinal"`
	Column      string   `json:"column"`
	LineageTag  string   `json:"lineage_tag"`
	Hidden      bool     `json:"is_hidden"`
	Annotations []string `json:"annotations,omitempty"`
}
