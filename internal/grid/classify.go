package grid

import (
	"slices"

	"refdesk/internal/domain"
)

// Classification is the outcome of classifying one field
type Classification struct {
	Editable bool
	Kind     Kind
}

// Classify decides editability and editor kind for a field.
// Read-only always wins over select and date membership.
func Classify(field string, editMode bool, spec ColumnSpec, cfg FieldConfig) Classification {
	c := Classification{
		Editable: editMode && !slices.Contains(cfg.ReadOnly, field),
		Kind:     KindPlain,
	}

	switch {
	case slices.Contains(cfg.DateFields, field):
		c.Kind = KindDate
	case hasStaticOptions(cfg, field), hasResolver(cfg, field), spec.Type == ColumnTypeSingleSelect:
		c.Kind = KindSelect
	}
	return c
}

// ProcessColumns classifies every spec. Call again whenever edit mode or the config changes.
func ProcessColumns(specs []ColumnSpec, editMode bool, cfg FieldConfig) []Column {
	cols := make([]Column, 0, len(specs))
	for _, s := range specs {
		c := Classify(s.Field, editMode, s, cfg)
		col := Column{
			Field:    s.Field,
			Header:   s.Header,
			Width:    s.Width,
			Editable: c.Editable,
			Kind:     c.Kind,
		}
		if c.Kind == KindSelect {
			col.Options = cfg.SelectFields[s.Field]
		}
		cols = append(cols, col)
	}
	return cols
}

// OptionsFor returns the options of a select column for a row.
// A dynamic resolver takes precedence over static options.
func OptionsFor(col Column, row domain.Row, cfg FieldConfig) []Option {
	if col.Kind != KindSelect {
		return nil
	}
	if r, ok := cfg.DynamicSelect[col.Field]; ok && r != nil {
		return r(row)
	}
	if opts, ok := cfg.SelectFields[col.Field]; ok {
		return opts
	}
	return col.Options
}

// LabelFor maps a stored value to its option label, falling back to the value itself
func LabelFor(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Dependents returns the fields that must be cleared when field changes
func Dependents(cfg FieldConfig, field string) []string {
	var out []string
	for dependent, sources := range cfg.Dependencies {
		if slices.Contains(sources, field) {
			out = append(out, dependent)
		}
	}
	slices.Sort(out)
	return out
}

func hasStaticOptions(cfg FieldConfig, field string) bool {
	_, ok := cfg.SelectFields[field]
	return ok
}

func hasResolver(cfg FieldConfig, field string) bool {
	r, ok := cfg.DynamicSelect[field]
	return ok && r != nil
}
