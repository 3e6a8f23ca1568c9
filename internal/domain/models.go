package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one record of a reference-data grid, keyed by field name.
type Row map[string]any

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the display form of a field value; nil and missing render empty
func (r Row) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

// Fields returns the row's field names in sorted order
func (r Row) Fields() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PageMeta describes pagination of a list response
type PageMeta struct {
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// Page is a page of rows together with its pagination info
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// BatchResult summarizes a bulk create or delete
type BatchResult struct {
	TotalCount   int `json:"totalCount"`
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`
}
