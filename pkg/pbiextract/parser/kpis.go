package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

// Provenance labels.
const (
	originModel      = "Model"
	originJoiner     = " and "
	modelSourceTable = "N/A (Model)"
)

type visualConfig struct {
	SingleVisual *struct {
		VisualType  string `json:"visualType"`
		Projections map[string][]struct {
			QueryRef string `json:"queryRef"`
		} `json:"projections"`
	} `json:"singleVisual"`
}

type dataTransforms struct {
	Selects []struct {
		QueryName   string          `json:"queryName"`
		DisplayName string          `json:"displayName"`
		Expr        json.RawMessage `json:"expr"`
	} `json:"selects"`
}

// ExtractKPIs walks a report Layout document, collects every field a visual
// projects, folds in model-level measure definitions (found in the layout
// itself and in modelMeasures) and returns the calculated ones.
func ExtractKPIs(layout []byte, modelMeasures []models.Measure) ([]models.KPI, error) {
	doc, err := decodeObject(layout)
	if err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}

	kpis := visualKPIs(doc)
	defs := collectModelMeasures(map[string]any(doc))
	for _, m := range modelMeasures {
		defs = append(defs, modelKPI(m.Name, m.Name, m.Expression, orNA(m.Table)))
	}

	kpis = mergeModelKPIs(kpis, dedupeByName(defs))

	out := make([]models.KPI, 0, len(kpis))
	for _, k := range kpis {
		if k.Calculated {
			out = append(out, k)
		}
	}
	return out, nil
}

func visualKPIs(doc node) []models.KPI {
	var kpis []models.KPI
	for i, section := range doc.list("sections") {
		page := section.str("displayName", fmt.Sprintf("Section %d", i+1))
		for _, container := range section.list("visualContainers") {
			kpis = append(kpis, containerKPIs(container, page)...)
		}
	}
	return kpis
}

func containerKPIs(container node, page string) []models.KPI {
	var cfg visualConfig
	if err := json.Unmarshal([]byte(container.str("config", "{}")), &cfg); err != nil {
		return nil
	}
	if cfg.SingleVisual == nil {
		return nil
	}

	var transforms dataTransforms
	if err := json.Unmarshal([]byte(container.str("dataTransforms", "{}")), &transforms); err != nil {
		transforms = dataTransforms{}
	}

	visualType := cfg.SingleVisual.VisualType
	if visualType == "" {
		visualType = models.NA
	}

	roles := make([]string, 0, len(cfg.SingleVisual.Projections))
	for role := range cfg.SingleVisual.Projections {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var kpis []models.KPI
	for _, role := range roles {
		for _, item := range cfg.SingleVisual.Projections[role] {
			if item.QueryRef == "" {
				continue
			}
			kpi := models.KPI{
				BaseName:    item.QueryRef,
				Formula:     item.QueryRef,
				VisualType:  visualType,
				SourceTable: SourceTable(item.QueryRef),
				Source:      fmt.Sprintf("Visual (%s)", page),
			}
			for _, sel := range transforms.Selects {
				if sel.QueryName != item.QueryRef {
					continue
				}
				kpi.Alias = sel.DisplayName
				kpi.Calculated = isCalculatedExpr(sel.Expr)
			}
			kpis = append(kpis, kpi)
		}
	}
	return kpis
}

// isCalculatedExpr classifies a select expression by the node kinds it mentions.
func isCalculatedExpr(expr json.RawMessage) bool {
	text := string(expr)
	switch {
	case strings.Contains(text, "Aggregation"), strings.Contains(text, "Measure"):
		return true
	default:
		return false
	}
}

// collectModelMeasures finds every "measures" list in the document, in
// key order, descending into embedded JSON "config" strings.
func collectModelMeasures(v any) []models.KPI {
	var out []models.KPI
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			value := t[k]
			if list, ok := value.([]any); ok && k == "measures" {
				for _, item := range list {
					if m, ok := item.(map[string]any); ok {
						out = append(out, measureDefinition(node(m)))
					}
				}
				continue
			}
			if s, ok := value.(string); ok && k == "config" && strings.HasPrefix(strings.TrimSpace(s), "{") {
				if embedded, err := decodeObject([]byte(s)); err == nil {
					out = append(out, collectModelMeasures(map[string]any(embedded))...)
				}
				continue
			}
			out = append(out, collectModelMeasures(value)...)
		}
	case []any:
		for _, item := range t {
			out = append(out, collectModelMeasures(item)...)
		}
	}
	return out
}

func measureDefinition(m node) models.KPI {
	name := m.str("name", models.NA)
	alias := m.child("properties").str("dataViewDisplayName", name)
	return modelKPI(name, alias, m.expression("expression"), modelSourceTable)
}

func modelKPI(name, alias, formula, table string) models.KPI {
	if formula == "" {
		formula = models.NA
	}
	return models.KPI{
		BaseName:    name,
		Alias:       alias,
		Formula:     formula,
		VisualType:  models.NA,
		SourceTable: table,
		Source:      originModel,
		Calculated:  true,
	}
}

func dedupeByName(defs []models.KPI) []models.KPI {
	seen := make(map[string]bool, len(defs))
	out := defs[:0]
	for _, d := range defs {
		if seen[d.BaseName] {
			continue
		}
		seen[d.BaseName] = true
		out = append(out, d)
	}
	return out
}

// mergeModelKPIs folds each model definition into the first visual KPI with
// the same name; the model formula wins over a bare field reference.
func mergeModelKPIs(visual, defs []models.KPI) []models.KPI {
	merged := append([]models.KPI(nil), visual...)
	n := len(merged)

	for _, def := range defs {
		idx := -1
		for i := 0; i < n; i++ {
			if merged[i].BaseName == def.BaseName || MeasureName(merged[i].BaseName) == def.BaseName {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, def)
			continue
		}

		k := &merged[idx]
		if !strings.HasSuffix(k.Source, originJoiner+originModel) {
			k.Source += originJoiner + originModel
		}
		if def.Formula != models.NA && k.Formula == k.BaseName {
			k.Formula = def.Formula
		}
		k.Calculated = true
	}
	return merged
}
