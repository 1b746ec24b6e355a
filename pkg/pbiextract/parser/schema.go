package parser

import (
	"fmt"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

// Fallback names for entities without a "name".
const (
	unnamedModel     = "Unnamed model"
	unnamedTable     = "Unnamed table"
	unnamedColumn    = "Unnamed column"
	unnamedMeasure   = "Unnamed measure"
	unnamedHierarchy = "Unnamed hierarchy"
	unnamedLevel     = "Unnamed level"
	unnamedVariation = "Unnamed variation"
	unnamedRelation  = "Unnamed relationship"
	unnamedCulture   = "Unnamed culture"
	unnamedPartition = "Unnamed partition"
	unnamedNote      = "Unnamed annotation"
)

// FlattenSchema walks a DataModelSchema document and returns one record per
// leaf entity. Missing structures produce empty output, never an error;
// only malformed JSON fails.
func FlattenSchema(data []byte) (*models.Schema, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode model schema: %w", err)
	}

	f := &flattener{schema: &models.Schema{Name: doc.str("name", unnamedModel)}}
	model := doc.child("model")

	for _, a := range model.list("annotations") {
		f.annotate(a, annotationScope{kind: "Model", name: f.schema.Name})
	}
	for _, t := range model.list("tables") {
		f.table(t)
	}
	for _, r := range model.list("relationships") {
		f.relationship(r)
	}
	for _, c := range model.list("cultures") {
		f.culture(c)
	}

	return f.schema, nil
}

type flattener struct {
	schema *models.Schema
}

// annotationScope carries the denormalised parent names of an annotation.
type annotationScope struct {
	kind         string
	name         string
	table        string
	column       string
	measure      string
	relationship string
	hierarchy    string
	level        string
	part         string
}

func orNA(s string) string {
	if s == "" {
		return models.NA
	}
	return s
}

func (f *flattener) annotate(a node, s annotationScope) {
	f.schema.Annotations = append(f.schema.Annotations, models.Annotation{
		ParentKind:   s.kind,
		ParentName:   s.name,
		Name:         a.str("name", models.NA),
		Value:        a.str("value", models.NA),
		Table:        orNA(s.table),
		Column:       orNA(s.column),
		Measure:      orNA(s.measure),
		Relationship: orNA(s.relationship),
		Hierarchy:    orNA(s.hierarchy),
		Level:        orNA(s.level),
		Partition:    orNA(s.part),
	})
}

func (f *flattener) table(t node) {
	name := t.str("name", unnamedTable)

	f.schema.Tables = append(f.schema.Tables, models.Table{
		Name:                 name,
		Hidden:               t.boolean("isHidden", false),
		Private:              t.boolean("isPrivate", false),
		ShowAsVariationsOnly: t.boolean("showAsVariationsOnly", false),
		LineageTag:           t.str("lineageTag", models.NA),
		Description:          t.str("description", models.NA),
		Partitions:           t.names("partitions", unnamedPartition),
		Columns:              t.names("columns", unnamedColumn),
		Measures:             t.names("measures", unnamedMeasure),
		Hierarchies:          t.names("hierarchies", unnamedHierarchy),
	})

	for i, p := range t.list("partitions") {
		f.partition(name, i, p)
	}
	for _, c := range t.list("columns") {
		f.column(name, c)
	}
	for _, m := range t.list("measures") {
		f.measure(name, m)
	}
	for _, h := range t.list("hierarchies") {
		f.hierarchy(name, h)
	}
	for _, a := range t.list("annotations") {
		f.annotate(a, annotationScope{kind: "Table", name: name, table: name})
	}
}

func (f *flattener) partition(table string, idx int, p node) {
	name := p.str("name", fmt.Sprintf("Partition %d", idx+1))

	part := models.Partition{
		Name:       name,
		Table:      table,
		Mode:       p.str("mode", models.NA),
		SourceType: models.NA,
		Source: models.MSource{
			Path:       models.NA,
			Table:      models.NA,
			Expression: models.NA,
			Filters:    models.NA,
		},
		LineageTag: p.str("lineageTag", models.NA),
	}
	if p.has("source") {
		src := p.child("source")
		part.SourceType = src.str("type", models.NA)
		if expr, ok := src.rawExpression("expression"); ok {
			part.Source = ExtractMSource(expr)
		}
	}
	f.schema.Partitions = append(f.schema.Partitions, part)

	for _, a := range p.list("annotations") {
		f.annotate(a, annotationScope{kind: "Partition", name: name, table: table, part: name})
	}
}

func (f *flattener) column(table string, c node) {
	name := c.str("name", unnamedColumn)

	f.schema.Columns = append(f.schema.Columns, models.Column{
		Name:           name,
		Table:          table,
		DataType:       c.str("dataType", models.NA),
		SourceColumn:   c.str("sourceColumn", models.NA),
		SummarizeBy:    c.str("summarizeBy", models.NA),
		Hidden:         c.boolean("isHidden", false),
		IsNameInferred: c.boolean("isNameInferred", false),
		DataCategory:   c.str("dataCategory", models.NA),
		FormatString:   c.str("formatString", models.NA),
		SortByColumn:   c.str("sortByColumn", models.NA),
		LineageTag:     c.str("lineageTag", models.NA),
		Expression:     c.expression("expression"),
		Description:    c.str("description", models.NA),
		Annotations:    c.names("annotations", unnamedNote),
		Variations:     c.names("variations", unnamedVariation),
	})

	for _, v := range c.list("variations") {
		vname := v.str("name", unnamedVariation)
		def := v.child("defaultHierarchy")
		f.schema.Variations = append(f.schema.Variations, models.Variation{
			Name:             vname,
			Column:           name,
			Table:            table,
			Relationship:     v.str("relationship", models.NA),
			IsDefault:        v.boolean("isDefault", false),
			DefaultTable:     def.str("table", models.NA),
			DefaultHierarchy: def.str("hierarchy", models.NA),
			LineageTag:       v.str("lineageTag", models.NA),
		})
		for _, a := range v.list("annotations") {
			f.annotate(a, annotationScope{kind: "Column Variation", name: vname, table: table, column: name})
		}
	}

	for _, a := range c.list("annotations") {
		f.annotate(a, annotationScope{kind: "Column", name: name, table: table, column: name})
	}
}

func (f *flattener) measure(table string, m node) {
	name := m.str("name", unnamedMeasure)

	f.schema.Measures = append(f.schema.Measures, models.Measure{
		Name:         name,
		Table:        table,
		Expression:   m.expression("expression"),
		FormatString: m.str("formatString", models.NA),
		LineageTag:   m.str("lineageTag", models.NA),
		Hidden:       m.boolean("isHidden", false),
		Description:  m.str("description", models.NA),
		Annotations:  m.names("annotations", unnamedNote),
	})

	for _, a := range m.list("annotations") {
		f.annotate(a, annotationScope{kind: "Measure", name: name, table: table, measure: name})
	}
}

func (f *flattener) hierarchy(table string, h node) {
	name := h.str("name", unnamedHierarchy)

	f.schema.Hierarchies = append(f.schema.Hierarchies, models.Hierarchy{
		Name:        name,
		Table:       table,
		LineageTag:  h.str("lineageTag", models.NA),
		Hidden:      h.boolean("isHidden", false),
		Levels:      h.names("levels", unnamedLevel),
		Annotations: h.names("annotations", unnamedNote),
	})

	for _, l := range h.list("levels") {
		lname := l.str("name", unnamedLevel)
		column := l.str("column", models.NA)
		f.schema.HierarchyLevels = append(f.schema.HierarchyLevels, models.HierarchyLevel{
			Name:        lname,
			Hierarchy:   name,
			Table:       table,
			Ordinal:     l.str("ordinal", models.NA),
			Column:      column,
			LineageTag:  l.str("lineageTag", models.NA),
			Hidden:      l.boolean("isHidden", false),
			Annotations: l.names("annotations", unnamedNote),
		})
		for _, a := range l.list("annotations") {
			f.annotate(a, annotationScope{
				kind: "Hierarchy Level", name: lname,
				table: table, column: column, hierarchy: name, level: lname,
			})
		}
	}
}

func (f *flattener) relationship(r node) {
	name := r.str("name", unnamedRelation)
	from := r.str("fromTable", models.NA)

	f.schema.Relationships = append(f.schema.Relationships, models.Relationship{
		Name:                   name,
		FromTable:              from,
		FromColumn:             r.str("fromColumn", models.NA),
		ToTable:                r.str("toTable", models.NA),
		ToColumn:               r.str("toColumn", models.NA),
		Type:                   r.str("type", models.NA),
		CrossFilteringBehavior: r.str("crossFilteringBehavior", models.NA),
		Active:                 r.boolean("isActive", true),
		JoinOnDateBehavior:     r.str("joinOnDateBehavior", models.NA),
		LineageTag:             r.str("lineageTag", models.NA),
		Annotations:            r.names("annotations", unnamedNote),
	})

	for _, a := range r.list("annotations") {
		f.annotate(a, annotationScope{kind: "Relationship", name: name, table: from, relationship: name})
	}
}

func (f *flattener) culture(c node) {
	culture := models.Culture{Name: c.str("name", unnamedCulture)}

	if c.has("linguisticMetadata") {
		meta := c.child("linguisticMetadata")
		culture.HasMetadata = true
		culture.ContentType = meta.str("contentType", models.NA)

		content := meta.child("content")
		if len(content) > 0 {
			culture.Content = make(map[string]string, len(content))
			for k := range content {
				culture.Content[k] = content.str(k, models.NA)
			}
		}
	}

	f.schema.Cultures = append(f.schema.Cultures, culture)
}
