package models

// Annotation is a name/value pair attached to any model entity.
type Annotation struct {
	// ParentKind is the kind of the annotated entity.
	ParentKind string `json:"parent_kind"`
	// ParentName is the annotated entity's name.
	ParentName string `json:"parent_name"`
	// Name is the annotation name.
	Name string `json:"name"`
	// Value is the stringified annotation value.
	Value string `json:"value"`
	// Table is the owning table, or NA.
	Table string `json:"table"`
	// Column is the owning column, or NA.
	Column string `json:"column"`
	// Measure is the owning measure, or NA.
	Measure string `json:"measure"`
	// Relationship is the owning relationship, or NA.
	Relationship string `json:"relationship"`
	// Hierarchy is the owning hierarchy, or NA.
	Hierarchy string `json:"hierarchy"`
	// Level is the owning hierarchy level, or NA.
	Level string `json:"level"`
	// Partition is the owning partition, or NA.
	Partition string `json:"partition"`
}
