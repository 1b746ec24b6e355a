package parser

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

// marshalString encodes v and returns it as a JSON string value, the way
// the report layout embeds visual configs.
func marshalString(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func visualContainer(t *testing.T, visualType string, projections map[string][]string, selects map[string]string) map[string]any {
	t.Helper()
	proj := map[string][]map[string]string{}
	for role, refs := range projections {
		for _, ref := range refs {
			proj[role] = append(proj[role], map[string]string{"queryRef": ref})
		}
	}

	var sel []map[string]any
	for ref, kind := range selects {
		sel = append(sel, map[string]any{
			"queryName":   ref,
			"displayName": ref + " (display)",
			"expr":        map[string]any{kind: map[string]any{}},
		})
	}

	return map[string]any{
		"config": marshalString(t, map[string]any{
			"singleVisual": map[string]any{"visualType": visualType, "projections": proj},
		}),
		"dataTransforms": marshalString(t, map[string]any{"selects": sel}),
	}
}

func layoutBytes(t *testing.T, layout map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(layout)
	if err != nil {
		t.Fatalf("marshal layout: %v", err)
	}
	return b
}

func TestExtractKPIsMergesModelDefinition(t *testing.T) {
	layout := layoutBytes(t, map[string]any{
		"sections": []any{
			map[string]any{
				"displayName": "Overview",
				"visualContainers": []any{
					visualContainer(t, "card",
						map[string][]string{
							"Values":   {"Sales.Total Sales"},
							"Category": {"Sales.Region"},
						},
						map[string]string{
							"Sales.Total Sales": "Measure",
							"Sales.Region":      "Column",
						}),
				},
			},
		},
		"config": marshalString(t, map[string]any{
			"modelExtensions": []any{map[string]any{
				"entities": []any{map[string]any{
					"name": "Sales",
					"measures": []any{map[string]any{
						"name":       "Total Sales",
						"expression": "SUM(Sales[Amount])",
					}},
				}},
			}},
		}),
	})

	kpis, err := ExtractKPIs(layout, nil)
	if err != nil {
		t.Fatalf("ExtractKPIs failed: %v", err)
	}

	expected := []models.KPI{{
		BaseName:    "Sales.Total Sales",
		Alias:       "Sales.Total Sales (display)",
		Formula:     "SUM(Sales[Amount])",
		VisualType:  "card",
		SourceTable: "Sales",
		Source:      "Visual (Overview) and Model",
		Calculated:  true,
	}}
	if !reflect.DeepEqual(kpis, expected) {
		t.Errorf("ExtractKPIs() = %+v, expected %+v", kpis, expected)
	}
}

func TestExtractKPIsSchemaMeasures(t *testing.T) {
	measures := []models.Measure{
		{Name: "Margin", Table: "Sales", Expression: "[Revenue] - [Cost]"},
		{Name: "Orphan", Expression: ""},
	}

	kpis, err := ExtractKPIs([]byte(`{}`), measures)
	if err != nil {
		t.Fatalf("ExtractKPIs failed: %v", err)
	}

	expected := []models.KPI{
		{BaseName: "Margin", Alias: "Margin", Formula: "[Revenue] - [Cost]", VisualType: models.NA,
			SourceTable: "Sales", Source: "Model", Calculated: true},
		{BaseName: "Orphan", Alias: "Orphan", Formula: models.NA, VisualType: models.NA,
			SourceTable: models.NA, Source: "Model", Calculated: true},
	}
	if !reflect.DeepEqual(kpis, expected) {
		t.Errorf("ExtractKPIs() = %+v, expected %+v", kpis, expected)
	}
}

func TestExtractKPIsLayoutDefinitionWins(t *testing.T) {
	layout := layoutBytes(t, map[string]any{
		"modelExtensions": []any{map[string]any{
			"measures": []any{map[string]any{
				"name":       "Margin",
				"expression": []any{"DIVIDE(", "  [Profit], [Revenue]", ")"},
				"properties": map[string]any{"dataViewDisplayName": "Margin %"},
			}},
		}},
	})

	kpis, err := ExtractKPIs(layout, []models.Measure{{Name: "Margin", Table: "Sales", Expression: "other"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(kpis) != 1 {
		t.Fatalf("expected 1 KPI, got %+v", kpis)
	}
	k := kpis[0]
	if k.Alias != "Margin %" || k.Formula != "DIVIDE(\n[Profit], [Revenue]\n)" || k.SourceTable != "N/A (Model)" {
		t.Errorf("unexpected KPI %+v", k)
	}
}

func TestExtractKPIsSkipsInvalidConfig(t *testing.T) {
	layout := layoutBytes(t, map[string]any{
		"sections": []any{
			map[string]any{
				"visualContainers": []any{
					map[string]any{"config": "not json"},
					map[string]any{"config": `{"name": "no visual"}`},
					visualContainer(t, "",
						map[string][]string{"Y": {"Sum(Sales.Amount)"}},
						map[string]string{"Sum(Sales.Amount)": "Aggregation"}),
				},
			},
		},
	})

	kpis, err := ExtractKPIs(layout, nil)
	if err != nil {
		t.Fatalf("ExtractKPIs failed: %v", err)
	}

	expected := []models.KPI{{
		BaseName:    "Sum(Sales.Amount)",
		Alias:       "Sum(Sales.Amount) (display)",
		Formula:     "Sum(Sales.Amount)",
		VisualType:  models.NA,
		SourceTable: "Sales",
		Source:      "Visual (Section 1)",
		Calculated:  true,
	}}
	if !reflect.DeepEqual(kpis, expected) {
		t.Errorf("ExtractKPIs() = %+v, expected %+v", kpis, expected)
	}
}

func TestExtractKPIsInvalidLayout(t *testing.T) {
	if _, err := ExtractKPIs([]byte(`{"sections": [`), nil); err == nil {
		t.Error("expected error for truncated layout")
	}
}

func TestQueryRefParts(t *testing.T) {
	tests := []struct {
		ref     string
		table   string
		measure string
	}{
		{"Sales.Amount", "Sales", "Amount"},
		{"Sum(Sales.Amount)", "Sales", ""},
		{"CountNonNull(Dim Date.Year)", "Dim Date", ""},
		{"Total Sales", models.NA, ""},
		{"Sales.Total Sales", "Sales", "Total Sales"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := SourceTable(tt.ref); got != tt.table {
				t.Errorf("SourceTable(%q) = %q, expected %q", tt.ref, got, tt.table)
			}
			if got := MeasureName(tt.ref); got != tt.measure {
				t.Errorf("MeasureName(%q) = %q, expected %q", tt.ref, got, tt.measure)
			}
		})
	}
}
