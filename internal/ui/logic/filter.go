package logic

import (
	"strings"

	"refdesk/internal/approval"
	"refdesk/internal/domain"
)

// SearchFilter handles client-side filtering of the loaded page
type SearchFilter struct {
	// label resolves a select code to its display label, so users can filter by either
	label func(field, value string) string
}

// NewSearchFilter creates a new search filter
func NewSearchFilter(label func(field, value string) string) *SearchFilter {
	return &SearchFilter{label: label}
}

// MatchesRow checks if a row matches the given filter query.
// "field:value" restricts the match to one field.
func (sf *SearchFilter) MatchesRow(row domain.Row, fields []string, filterQuery string) bool {
	if filterQuery == "" {
		return true
	}
	query := strings.ToLower(strings.TrimSpace(filterQuery))

	if field, value, ok := strings.Cut(query, ":"); ok && field != "" {
		for _, f := range fields {
			if strings.ToLower(f) == field {
				return sf.fieldContains(row, f, value)
			}
		}
	}

	for _, f := range fields {
		if sf.fieldContains(row, f, query) {
			return true
		}
	}
	return false
}

func (sf *SearchFilter) fieldContains(row domain.Row, field, query string) bool {
	v := row.String(field)
	if strings.Contains(strings.ToLower(v), query) {
		return true
	}
	if sf.label != nil && v != "" {
		return strings.Contains(strings.ToLower(sf.label(field, v)), query)
	}
	return false
}

// FilterRows returns the indices of rows that match
func (sf *SearchFilter) FilterRows(rows []domain.Row, fields []string, filterQuery string) []int {
	out := make([]int, 0, len(rows))
	for i, r := range rows {
		if sf.MatchesRow(r, fields, filterQuery) {
			out = append(out, i)
		}
	}
	return out
}

// MatchesRequest checks an approval request against the filter query.
// "status:" matches the status code or its label.
func (sf *SearchFilter) MatchesRequest(req approval.Request, filterQuery string) bool {
	if filterQuery == "" {
		return true
	}
	query := strings.ToLower(strings.TrimSpace(filterQuery))

	if strings.HasPrefix(query, "status:") {
		status := strings.TrimPrefix(query, "status:")
		return strings.Contains(strings.ToLower(string(req.Status)), status) ||
			strings.Contains(req.Status.Label(), status)
	}

	return strings.Contains(strings.ToLower(req.RequesterName), query) ||
		strings.Contains(strings.ToLower(req.TargetID.String()), query) ||
		strings.Contains(strings.ToLower(string(req.Kind)), query) ||
		strings.Contains(req.Status.Label(), query)
}
