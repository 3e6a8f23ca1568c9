// Package validate checks rows against per-field rules before they are submitted for approval.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"refdesk/internal/domain"
)

// Condition matches when the row's Field holds one of In
type Condition struct {
	Field string   `yaml:"field"`
	In    []string `yaml:"in"`
}

// Rule describes the constraints of one field
type Rule struct {
	Field        string     `yaml:"field"`
	Label        string     `yaml:"label"`
	Required     bool       `yaml:"required"`
	RequiredWhen *Condition `yaml:"requiredWhen"`
	Min          int        `yaml:"min"`
	Max          int        `yaml:"max"`
	URL          bool       `yaml:"url"`
	Date         bool       `yaml:"date"`
	After        string     `yaml:"after"`
	OneOf        []string   `yaml:"oneOf"`
}

func (r Rule) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}

// Errors maps a field to its first failing message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the failing fields in order
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Row checks every rule against row. It returns nil when the row is valid.
func Row(rules []Rule, row domain.Row) error {
	errs := Errors{}
	for _, r := range rules {
		if msg := check(r, row); msg != "" {
			errs[r.Field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func check(r Rule, row domain.Row) string {
	value := strings.TrimSpace(row.String(r.Field))
	required := r.Required || (r.RequiredWhen != nil && slices.Contains(r.RequiredWhen.In, row.String(r.RequiredWhen.Field)))
	if value == "" {
		if required {
			return r.label() + " is required"
		}
		return ""
	}

	n := utf8.RuneCountInString(value)
	if r.Min > 0 && n < r.Min {
		return fmt.Sprintf("%s must be at least %d characters", r.label(), r.Min)
	}
	if r.Max > 0 && n > r.Max {
		return fmt.Sprintf("%s must not exceed %d characters", r.label(), r.Max)
	}
	if len(r.OneOf) > 0 && !slices.Contains(r.OneOf, value) {
		return fmt.Sprintf("%s has an unknown value %q", r.label(), value)
	}
	if r.URL && !IsURL(value) {
		return r.label() + " must be a valid URL"
	}
	if r.Date || r.After != "" {
		t, ok := ParseDate(value)
		if !ok {
			return r.label() + " has an invalid date format (e.g. 2025-12-12 15:00:00 or 20251212150000)"
		}
		if r.After != "" {
			if start, ok := ParseDate(row.String(r.After)); ok && !t.After(start) {
				return fmt.Sprintf("%s must be later than %s", r.label(), r.After)
			}
		}
	}
	return ""
}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// IsURL accepts absolute http(s) URLs and bare hosts, which are read as https
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !schemePattern.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != "" && !strings.ContainsAny(u.Host, " ")
}

var dateLayouts = []string{
	"20060102150405",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"20060102",
}

// ParseDate reads the date formats the backend and operators use
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in the backend storage format
func FormatDate(t time.Time) string {
	return t.Format("20060102150405")
}
