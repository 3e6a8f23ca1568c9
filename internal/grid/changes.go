package grid

import (
	"reflect"

	"refdesk/internal/domain"
)

// ignoredOnCompare are bookkeeping fields that never count as an edit
var ignoredOnCompare = map[string]bool{
	"no":        true,
	"updatedAt": true,
	"createdAt": true,
}

// HasChanges reports whether edited differs from original on any user field.
// nil, missing and empty string are treated as equal.
func HasChanges(original, edited domain.Row) bool {
	seen := make(map[string]bool, len(original)+len(edited))
	for k := range original {
		seen[k] = true
	}
	for k := range edited {
		seen[k] = true
	}
	for k := range seen {
		if ignoredOnCompare[k] {
			continue
		}
		if !sameValue(original[k], edited[k]) {
			return true
		}
	}
	return false
}

// ChangedFields lists the fields HasChanges would report, in row order of fields
func ChangedFields(original, edited domain.Row, fields []string) []string {
	var out []string
	for _, f := range fields {
		if ignoredOnCompare[f] {
			continue
		}
		if !sameValue(original[f], edited[f]) {
			out = append(out, f)
		}
	}
	return out
}

// Number writes display numbers into the "no" field of each row.
// Descending numbering counts down from total minus the page offset.
func Number(rows []domain.Row, page, size, total int, descending bool) {
	offset := page * size
	for i, r := range rows {
		if descending {
			r["no"] = total - offset - i
		} else {
			r["no"] = offset + i + 1
		}
	}
}

func sameValue(a, b any) bool {
	if isBlank(a) && isBlank(b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
