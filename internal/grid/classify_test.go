package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"refdesk/internal/domain"
)

var statusOpts = []Option{{Label: "서비스 중", Value: "in_service"}, {Label: "서비스 종료", Value: "out_of_service"}}

func TestClassifyReadOnlyWins(t *testing.T) {
	cfg := FieldConfig{
		ReadOnly:     []string{"status", "updatedAt"},
		SelectFields: map[string][]Option{"status": statusOpts},
		DateFields:   []string{"updatedAt"},
	}

	for _, field := range []string{"status", "updatedAt"} {
		c := Classify(field, true, ColumnSpec{Field: field}, cfg)
		assert.False(t, c.Editable, field)
	}
	assert.Equal(t, KindSelect, Classify("status", true, ColumnSpec{}, cfg).Kind)
	assert.Equal(t, KindDate, Classify("updatedAt", true, ColumnSpec{}, cfg).Kind)
}

func TestClassifyKinds(t *testing.T) {
	cfg := FieldConfig{
		SelectFields:  map[string][]Option{"status": statusOpts, "startDate": nil},
		DateFields:    []string{"startDate"},
		DynamicSelect: map[string]OptionResolver{"qstCtgr": func(domain.Row) []Option { return nil }},
	}

	tests := []struct {
		field string
		spec  ColumnSpec
		want  Kind
	}{
		{"startDate", ColumnSpec{}, KindDate},
		{"status", ColumnSpec{}, KindSelect},
		{"qstCtgr", ColumnSpec{}, KindSelect},
		{"showU17", ColumnSpec{Type: ColumnTypeSingleSelect}, KindSelect},
		{"description", ColumnSpec{}, KindPlain},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.field, true, tt.spec, cfg).Kind)
		})
	}
}

func TestClassifyOutsideEditMode(t *testing.T) {
	c := Classify("description", false, ColumnSpec{}, FieldConfig{})
	assert.False(t, c.Editable)
	assert.Equal(t, KindPlain, c.Kind)
}

func TestProcessColumnsFollowsModeToggle(t *testing.T) {
	specs := []ColumnSpec{{Field: "no"}, {Field: "name"}, {Field: "status"}}
	cfg := FieldConfig{ReadOnly: []string{"no"}, SelectFields: map[string][]Option{"status": statusOpts}}

	off := ProcessColumns(specs, false, cfg)
	on := ProcessColumns(specs, true, cfg)

	for _, c := range off {
		assert.False(t, c.Editable)
	}
	assert.False(t, on[0].Editable)
	assert.True(t, on[1].Editable)
	assert.True(t, on[2].Editable)
	assert.Equal(t, statusOpts, on[2].Options)
}

func TestOptionsForPrefersResolver(t *testing.T) {
	cfg := FieldConfig{
		SelectFields: map[string][]Option{"qstCtgr": {{Label: "static", Value: "s"}}},
		DynamicSelect: map[string]OptionResolver{"qstCtgr": func(r domain.Row) []Option {
			if r.String("serviceNm") == "ai_search" {
				return []Option{{Label: "mid", Value: "ai_search_mid"}}
			}
			return nil
		}},
	}
	col := ProcessColumns([]ColumnSpec{{Field: "qstCtgr"}}, true, cfg)[0]

	opts := OptionsFor(col, domain.Row{"serviceNm": "ai_search"}, cfg)
	assert.Equal(t, []Option{{Label: "mid", Value: "ai_search_mid"}}, opts)
	assert.Empty(t, OptionsFor(col, domain.Row{"serviceNm": "ai_calc"}, cfg))
}

func TestLabelForAndDependents(t *testing.T) {
	assert.Equal(t, "서비스 중", LabelFor(statusOpts, "in_service"))
	assert.Equal(t, "unknown", LabelFor(statusOpts, "unknown"))

	cfg := FieldConfig{Dependencies: map[string][]string{
		"qstCtgr": {"serviceNm"},
		"ageGrp":  {"serviceNm"},
	}}
	assert.Equal(t, []string{"ageGrp", "qstCtgr"}, Dependents(cfg, "serviceNm"))
	assert.Empty(t, Dependents(cfg, "qstCtgr"))
}
