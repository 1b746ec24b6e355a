package models

import (
	"sort"
	"strconv"
	"strings"
)

// Record set titles, in rendering order.
const (
	TitleTables          = "Tables"
	TitlePartitions      = "Partitions"
	TitleColumns         = "Columns"
	TitleVariations      = "Column Variations"
	TitleMeasures        = "Measures"
	TitleHierarchies     = "Hierarchies"
	TitleHierarchyLevels = "Hierarchy Levels"
	TitleRelationships   = "Relationships"
	TitleCultures        = "Cultures"
	TitleAnnotations     = "Annotations"
)

// Parent kinds used for colour grouping.
const (
	KindTable        = "Table"
	KindRelationship = "Relationship"
	KindCulture      = "Culture"
)

// Schema holds every record flattened from a DataModelSchema document.
type Schema struct {
	// Name is the model document name.
	Name            string           `json:"name"`
	Tables          []Table          `json:"tables,omitempty"`
	Partitions      []Partition      `json:"partitions,omitempty"`
	Columns         []Column         `json:"columns,omitempty"`
	Variations      []Variation      `json:"variations,omitempty"`
	Measures        []Measure        `json:"measures,omitempty"`
	Hierarchies     []Hierarchy      `json:"hierarchies,omitempty"`
	HierarchyLevels []HierarchyLevel `json:"hierarchy_levels,omitempty"`
	Relationships   []Relationship   `json:"relationships,omitempty"`
	Cultures        []Culture        `json:"cultures,omitempty"`
	Annotations     []Annotation     `json:"annotations,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (s *Schema) IsEmpty() bool {
	return len(s.RecordSets()) == 0
}

// VisibleColumns returns table/column pairs, skipping hidden tables unless includeHidden.
func (s *Schema) VisibleColumns(includeHidden bool) []VisibleColumn {
	hidden := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.Hidden {
			hidden[t.Name] = true
		}
	}

	var out []VisibleColumn
	for _, c := range s.Columns {
		if hidden[c.Table] && !includeHidden {
			continue
		}
		out = append(out, VisibleColumn{Table: c.Table, Column: c.Name})
	}
	return out
}

// GranularRecordSet renders visible columns as the granular view.
func GranularRecordSet(cols []VisibleColumn) *RecordSet {
	rs := &RecordSet{Title: "Granular Data", Headers: []string{"Table Name", "Column Name"}}
	for _, c := range cols {
		rs.Append(ParentRef{Kind: KindTable, Name: c.Table}, c.Table, c.Column)
	}
	return rs
}

// KPIRecordSet renders calculated KPIs.
func KPIRecordSet(kpis []KPI) *RecordSet {
	rs := &RecordSet{
		Title:   "KPIs",
		Headers: []string{"Base Name", "Alias", "Source Table", "Formula", "Visual Type", "Source"},
	}
	for _, k := range kpis {
		rs.Append(ParentRef{Kind: "Source", Name: k.Source},
			k.BaseName, k.Alias, k.SourceTable, k.Formula, k.VisualType, k.Source)
	}
	return rs
}

// RecordSets returns the non-empty record sets in rendering order.
func (s *Schema) RecordSets() []RecordSet {
	all := []RecordSet{
		s.tableSet(),
		s.partitionSet(),
		s.columnSet(),
		s.variationSet(),
		s.measureSet(),
		s.hierarchySet(),
		s.levelSet(),
		s.relationshipSet(),
		s.cultureSet(),
		s.annotationSet(),
	}

	var out []RecordSet
	for _, rs := range all {
		if len(rs.Rows) > 0 {
			out = append(out, rs)
		}
	}
	return out
}

func tableParent(name string) ParentRef {
	return ParentRef{Kind: KindTable, Name: name}
}

func (s *Schema) tableSet() RecordSet {
	rs := RecordSet{Title: TitleTables, Headers: []string{
		"Table Name", "isHidden", "isPrivate", "showAsVariationsOnly", "lineageTag", "description",
		"Partitions (Names)", "Columns (Names)", "Measures (Names)", "Hierarchies (Names)",
	}}
	for _, t := range s.Tables {
		rs.Append(tableParent(t.Name),
			t.Name, formatBool(t.Hidden), formatBool(t.Private), formatBool(t.ShowAsVariationsOnly),
			t.LineageTag, t.Description,
			joinNames(t.Partitions), joinNames(t.Columns), joinNames(t.Measures), joinNames(t.Hierarchies))
	}
	return rs
}

func (s *Schema) partitionSet() RecordSet {
	rs := RecordSet{Title: TitlePartitions, Headers: []string{
		"Partition Name", "Parent Table", "mode", "source.type", "source.expression (Truncated)",
		"Data Source (Extracted)", "Source Table Name (Extracted)", "Filters (Extracted)", "lineageTag",
	}}
	for _, p := range s.Partitions {
		rs.Append(tableParent(p.Table),
			p.Name, p.Table, p.Mode, p.SourceType, p.Source.Expression,
			p.Source.Path, p.Source.Table, p.Source.Filters, p.LineageTag)
	}
	return rs
}

func (s *Schema) columnSet() RecordSet {
	rs := RecordSet{Title: TitleColumns, Headers: []string{
		"Column Name", "Parent Table", "dataType", "sourceColumn", "summarizeBy", "isHidden",
		"isNameInferred", "dataCategory", "formatString", "sortByColumn", "lineageTag", "expression",
		"description", "Annotations (Names)", "Variations (Names)",
	}}
	for _, c := range s.Columns {
		rs.Append(tableParent(c.Table),
			c.Name, c.Table, c.DataType, c.SourceColumn, c.SummarizeBy, formatBool(c.Hidden),
			formatBool(c.IsNameInferred), c.DataCategory, c.FormatString, c.SortByColumn, c.LineageTag,
			c.Expression, c.Description, joinNames(c.Annotations), joinNames(c.Variations))
	}
	return rs
}

func (s *Schema) variationSet() RecordSet {
	rs := RecordSet{Title: TitleVariations, Headers: []string{
		"Variation Name", "Parent Column", "Parent Table", "relationship", "isDefault",
		"defaultHierarchy.table", "defaultHierarchy.hierarchy", "lineageTag",
	}}
	for _, v := range s.Variations {
		rs.Append(tableParent(v.Table),
			v.Name, v.Column, v.Table, v.Relationship, formatBool(v.IsDefault),
			v.DefaultTable, v.DefaultHierarchy, v.LineageTag)
	}
	return rs
}

func (s *Schema) measureSet() RecordSet {
	rs := RecordSet{Title: TitleMeasures, Headers: []string{
		"Measure Name", "Parent Table", "expression", "formatString", "lineageTag", "isHidden",
		"description", "Annotations (Names)",
	}}
	for _, m := range s.Measures {
		rs.Append(tableParent(m.Table),
			m.Name, m.Table, m.Expression, m.FormatString, m.LineageTag, formatBool(m.Hidden),
			m.Description, joinNames(m.Annotations))
	}
	return rs
}

func (s *Schema) hierarchySet() RecordSet {
	rs := RecordSet{Title: TitleHierarchies, Headers: []string{
		"Hierarchy Name", "Parent Table", "lineageTag", "isHidden", "Levels (Names)", "Annotations (Names)",
	}}
	for _, h := range s.Hierarchies {
		rs.Append(tableParent(h.Table),
			h.Name, h.Table, h.LineageTag, formatBool(h.Hidden), joinNames(h.Levels), joinNames(h.Annotations))
	}
	return rs
}

func (s *Schema) levelSet() RecordSet {
	rs := RecordSet{Title: TitleHierarchyLevels, Headers: []string{
		"Level Name", "Parent Hierarchy", "Parent Table", "ordinal", "column", "lineageTag",
		"isHidden", "Annotations (Names)",
	}}
	for _, l := range s.HierarchyLevels {
		rs.Append(tableParent(l.Table),
			l.Name, l.Hierarchy, l.Table, l.Ordinal, l.Column, l.LineageTag,
			formatBool(l.Hidden), joinNames(l.Annotations))
	}
	return rs
}

func (s *Schema) relationshipSet() RecordSet {
	rs := RecordSet{Title: TitleRelationships, Headers: []string{
		"Relationship Name", "fromTable", "fromColumn", "toTable", "toColumn", "type",
		"crossFilteringBehavior", "isActive", "joinOnDateBehavior", "lineageTag", "Annotations (Names)",
	}}
	for _, r := range s.Relationships {
		rs.Append(ParentRef{Kind: KindRelationship, Name: r.Name},
			r.Name, r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.Type,
			r.CrossFilteringBehavior, formatBool(r.Active), r.JoinOnDateBehavior, r.LineageTag,
			joinNames(r.Annotations))
	}
	return rs
}

// cultureSet uses the union of content keys, sorted, as dynamic columns.
func (s *Schema) cultureSet() RecordSet {
	keySet := make(map[string]struct{})
	withType := false
	for _, c := range s.Cultures {
		for k := range c.Content {
			keySet[k] = struct{}{}
		}
		if c.HasMetadata {
			withType = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := []string{"Culture Name"}
	for _, k := range keys {
		headers = append(headers, "linguisticMetadata.content."+k)
	}
	if withType {
		headers = append(headers, "linguisticMetadata.contentType")
	}

	rs := RecordSet{Title: TitleCultures, Headers: headers}
	for _, c := range s.Cultures {
		values := []string{c.Name}
		for _, k := range keys {
			v, ok := c.Content[k]
			if !ok {
				v = NA
			}
			values = append(values, v)
		}
		if withType {
			ct := c.ContentType
			if ct == "" {
				ct = NA
			}
			values = append(values, ct)
		}
		rs.Append(ParentRef{Kind: KindCulture, Name: c.Name}, values...)
	}
	return rs
}

func (s *Schema) annotationSet() RecordSet {
	rs := RecordSet{Title: TitleAnnotations, Headers: []string{
		"Parent Entity Type", "Parent Entity Name", "Annotation Name", "Annotation Value",
		"Parent Table", "Parent Column", "Parent Measure", "Parent Relationship",
		"Parent Hierarchy", "Parent Hierarchy Level", "Parent Partition",
	}}
	for _, a := range s.Annotations {
		rs.Append(annotationParent(a),
			a.ParentKind, a.ParentName, a.Name, a.Value,
			a.Table, a.Column, a.Measure, a.Relationship, a.Hierarchy, a.Level, a.Partition)
	}
	return rs
}

// annotationParent prefers the owning table, then the nearest named ancestor.
func annotationParent(a Annotation) ParentRef {
	candidates := []ParentRef{
		{Kind: KindTable, Name: a.Table},
		{Kind: "Hierarchy", Name: a.Hierarchy},
		{Kind: "Column", Name: a.Column},
		{Kind: "Measure", Name: a.Measure},
		{Kind: "Partition", Name: a.Partition},
		{Kind: KindRelationship, Name: a.Relationship},
	}
	for _, p := range candidates {
		if !p.IsZero() {
			return p
		}
	}
	return ParentRef{}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
