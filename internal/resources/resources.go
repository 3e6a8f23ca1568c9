// Package resources describes the reference data resources the console manages.
package resources

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"refdesk/internal/domain"
	"refdesk/internal/grid"
	"refdesk/internal/validate"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ColumnDef is one grid column
type ColumnDef struct {
	Field  string `yaml:"field"`
	Header string `yaml:"header"`
	Width  int    `yaml:"width"`
	Type   string `yaml:"type"`
}

// DynamicDef is a select whose options depend on another field of the row
type DynamicDef struct {
	DependsOn string                   `yaml:"dependsOn"`
	Groups    map[string][]grid.Option `yaml:"groups"`
}

// Definition is one resource
type Definition struct {
	Name       string                   `yaml:"name"`
	Label      string                   `yaml:"label"`
	TargetType string                   `yaml:"targetType"`
	IDField    string                   `yaml:"idField"`
	Columns    []ColumnDef              `yaml:"columns"`
	ReadOnly   []string                 `yaml:"readOnly"`
	DateFields []string                 `yaml:"dateFields"`
	Options    map[string][]grid.Option `yaml:"options"`
	Dynamic    map[string]*DynamicDef   `yaml:"dynamic"`
	Rules      []validate.Rule          `yaml:"rules"`
	// SingleRow stops Tab at the last editable column instead of moving to
	// the next row, for resources edited one record at a time.
	SingleRow bool `yaml:"singleRow"`

	mu sync.RWMutex
}

type catalogFile struct {
	Resources []*Definition `yaml:"resources"`
}

// Catalog is the set of known resources
type Catalog struct {
	defs   []*Definition
	byName map[string]*Definition
}

// Load reads the built-in catalog, or the file at path when it is not empty
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resource file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a catalog document
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse resource catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]*Definition)}
	for _, d := range f.Resources {
		if err := d.check(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("resource %q defined twice", d.Name)
		}
		c.defs = append(c.defs, d)
		c.byName[d.Name] = d
	}
	if len(c.defs) == 0 {
		return nil, fmt.Errorf("resource catalog is empty")
	}
	return c, nil
}

func (d *Definition) check() error {
	if d.Name == "" {
		return fmt.Errorf("resource without a name")
	}
	if d.IDField == "" {
		return fmt.Errorf("resource %s: idField is required", d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("resource %s: no columns", d.Name)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if seen[c.Field] {
			return fmt.Errorf("resource %s: column %s declared twice", d.Name, c.Field)
		}
		seen[c.Field] = true
	}
	for field, opts := range d.Options {
		values := make(map[string]bool, len(opts))
		for _, o := range opts {
			if values[o.Value] {
				return fmt.Errorf("resource %s: duplicate option %q for %s", d.Name, o.Value, field)
			}
			values[o.Value] = true
		}
	}
	for field, dyn := range d.Dynamic {
		if dyn.DependsOn == "" {
			return fmt.Errorf("resource %s: dynamic field %s has no dependsOn", d.Name, field)
		}
	}
	return nil
}

// Names lists resources in declaration order
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d.Name)
	}
	return out
}

// Get returns the resource called name
func (c *Catalog) Get(name string) (*Definition, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Specs returns the grid column declarations
func (d *Definition) Specs() []grid.ColumnSpec {
	out := make([]grid.ColumnSpec, 0, len(d.Columns))
	for _, c := range d.Columns {
		out = append(out, grid.ColumnSpec{Field: c.Field, Header: c.Header, Width: c.Width, Type: c.Type})
	}
	return out
}

// RowID identifies a row by the resource's id field
func (d *Definition) RowID(r domain.Row) string {
	return r.String(d.IDField)
}

// FieldConfig builds the grid configuration. Dynamic options are resolved on
// every call so SetGroupOptions takes effect immediately.
func (d *Definition) FieldConfig() grid.FieldConfig {
	cfg := grid.FieldConfig{
		ReadOnly:     d.ReadOnly,
		SelectFields: d.Options,
		DateFields:   d.DateFields,
	}
	if len(d.Dynamic) == 0 {
		return cfg
	}
	cfg.DynamicSelect = make(map[string]grid.OptionResolver, len(d.Dynamic))
	cfg.Dependencies = make(map[string][]string, len(d.Dynamic))
	for field, dyn := range d.Dynamic {
		cfg.DynamicSelect[field] = d.resolver(dyn)
		cfg.Dependencies[field] = []string{dyn.DependsOn}
	}
	return cfg
}

func (d *Definition) resolver(dyn *DynamicDef) grid.OptionResolver {
	return func(row domain.Row) []grid.Option {
		key := row.String(dyn.DependsOn)
		if key == "" {
			return nil
		}
		d.mu.RLock()
		defer d.mu.RUnlock()
		return dyn.Groups[key]
	}
}

// SetGroupOptions replaces the options of a dynamic field for one value of the
// field it depends on
func (d *Definition) SetGroupOptions(field, group string, opts []grid.Option) error {
	dyn, ok := d.Dynamic[field]
	if !ok {
		return fmt.Errorf("resource %s: %s is not a dynamic select", d.Name, field)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if dyn.Groups == nil {
		dyn.Groups = make(map[string][]grid.Option)
	}
	dyn.Groups[group] = opts
	return nil
}

// DynamicGroups returns the values of the depended-on field that have options
func (d *Definition) DynamicGroups(field string) []string {
	dyn, ok := d.Dynamic[field]
	if !ok {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(dyn.Groups))
	for g := range dyn.Groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Validate checks a row against the resource rules
func (d *Definition) Validate(row domain.Row) error {
	return validate.Row(d.Rules, row)
}
