package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ListDefinition is the construction configuration of one record list:
// where its regions live in the rendered page and where its records are deleted.
type ListDefinition struct {
	Name           string `yaml:"name"`
	Container      string `yaml:"container"`
	Header         string `yaml:"header"`
	SearchInputID  string `yaml:"search_input"`
	PageInfoID     string `yaml:"page_info"`
	PageSize       int    `yaml:"page_size"`
	RecordEndpoint string `yaml:"endpoint"`
}

type listsFile struct {
	Lists []ListDefinition `yaml:"lists"`
}

// DefaultList returns the definition used by the transactions page.
func (c *Config) DefaultList() ListDefinition {
	return ListDefinition{
		Name:           "transactions",
		Container:      ".table",
		Header:         ".table-header",
		SearchInputID:  "search",
		PageInfoID:     "page-info",
		PageSize:       c.PageSize,
		RecordEndpoint: c.RecordEndpoint,
	}
}

// withDefaults fills empty fields from base.
func (d ListDefinition) withDefaults(base ListDefinition) ListDefinition {
	if d.Container == "" {
		d.Container = base.Container
	}
	if d.Header == "" {
		d.Header = base.Header
	}
	if d.SearchInputID == "" {
		d.SearchInputID = base.SearchInputID
	}
	if d.PageInfoID == "" {
		d.PageInfoID = base.PageInfoID
	}
	if d.PageSize == 0 {
		d.PageSize = base.PageSize
	}
	if d.RecordEndpoint == "" {
		d.RecordEndpoint = base.RecordEndpoint
	}
	return d
}

// Validate checks a single list definition.
func (d ListDefinition) Validate() error {
	var errors []string
	if d.Name == "" {
		errors = append(errors, "list name cannot be empty")
	}
	if d.Container == "" {
		errors = append(errors, fmt.Sprintf("list '%s': container selector cannot be empty", d.Name))
	}
	if d.Header == "" {
		errors = append(errors, fmt.Sprintf("list '%s': header selector cannot be empty", d.Name))
	}
	if d.SearchInputID == "" || strings.ContainsAny(d.SearchInputID, " #.") {
		errors = append(errors, fmt.Sprintf("list '%s': invalid search input id '%s'", d.Name, d.SearchInputID))
	}
	if d.PageInfoID == "" || strings.ContainsAny(d.PageInfoID, " #.") {
		errors = append(errors, fmt.Sprintf("list '%s': invalid page info id '%s'", d.Name, d.PageInfoID))
	}
	if d.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("list '%s': invalid page size %d: must be at least 1", d.Name, d.PageSize))
	}
	if len(errors) > 0 {
		return fmt.Errorf("list definition invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// LoadLists reads list definitions from the YAML file named by ListsFile.
// Without a file the default transactions list is returned.
func (c *Config) LoadLists() ([]ListDefinition, error) {
	base := c.DefaultList()
	if c.ListsFile == "" {
		return []ListDefinition{base}, nil
	}

	data, err := os.ReadFile(c.ListsFile)
	if err != nil {
		return nil, fmt.Errorf("read lists file: %w", err)
	}
	var f listsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lists file %s: %w", c.ListsFile, err)
	}
	if len(f.Lists) == 0 {
		return nil, fmt.Errorf("lists file %s defines no lists", c.ListsFile)
	}

	seen := make(map[string]bool, len(f.Lists))
	out := make([]ListDefinition, 0, len(f.Lists))
	for _, d := range f.Lists {
		d = d.withDefaults(base)
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate list name '%s' in %s", d.Name, c.ListsFile)
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out, nil
}

// FindList returns the list named name, or the first one when name is empty.
func FindList(lists []ListDefinition, name string) (ListDefinition, error) {
	if len(lists) == 0 {
		return ListDefinition{}, fmt.Errorf("no lists configured")
	}
	if name == "" {
		return lists[0], nil
	}
	for _, d := range lists {
		if d.Name == name {
			return d, nil
		}
	}
	return ListDefinition{}, fmt.Errorf("unknown list '%s'", name)
}
