// Package dictionary maps opaque survey field codes to display metadata.
//
// The tables are embedded as YAML and parsed once on first use. Codes are
// unique within a domain but may repeat across domains, so every lookup is
// qualified by domain.
package dictionary

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/wardlens/internal/models"
)

//go:embed fields.yaml
var fieldsYAML []byte

// Domain names one slice of the dictionary.
type Domain string

const (
	Social      Domain = "social"
	Economic    Domain = "economic"
	Housing     Domain = "housing"
	Demographic Domain = "demographic"
	FoodAccess  Domain = "food_access"
)

// Domains lists every slice in union order. Later slices overwrite earlier
// ones when All builds the union.
var Domains = []Domain{Social, Economic, Housing, Demographic, FoodAccess}

// SurveyDomains are the slices backed by a per-district survey extract.
var SurveyDomains = []Domain{Demographic, Economic, Housing, Social}

// UncategorizedLabel is the group name for fields without a category.
const UncategorizedLabel = "Other"

// ErrUnknownDomain is returned when a domain name is not in the dictionary.
var ErrUnknownDomain = errors.New("unknown dictionary domain")

// Field is the metadata of one survey field.
type Field struct {
	Code        string              `yaml:"code" json:"code"`
	Label       string              `yaml:"label" json:"label"`
	Description string              `yaml:"description" json:"description"`
	Format      models.NumberFormat `yaml:"format" json:"format"`
	Category    string              `yaml:"category,omitempty" json:"category,omitempty"`
}

// StoreType maps a raw retailer type name to its normalized category.
type StoreType struct {
	Name     string               `yaml:"name" json:"name"`
	Category models.StoreCategory `yaml:"category" json:"category"`
}

// Source describes the dataset behind a survey domain.
type Source struct {
	Domain      Domain `yaml:"domain" json:"domain"`
	Name        string `yaml:"name" json:"name"`
	Tag         string `yaml:"tag" json:"tag"`
	Prefix      string `yaml:"prefix" json:"prefix"`
	Description string `yaml:"description" json:"description"`
}

// Dictionary holds the parsed tables.
type Dictionary struct {
	slices     map[Domain][]Field
	index      map[Domain]map[string]int
	storeTypes []StoreType
	sources    []Source
}

type document struct {
	Social      []Field     `yaml:"social"`
	Economic    []Field     `yaml:"economic"`
	Housing     []Field     `yaml:"housing"`
	Demographic []Field     `yaml:"demographic"`
	FoodAccess  []Field     `yaml:"food_access"`
	StoreTypes  []StoreType `yaml:"store_types"`
	Sources     []Source    `yaml:"sources"`
}

// Parse builds a dictionary from YAML.
func Parse(data []byte) (*Dictionary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse field dictionary: %w", err)
	}

	d := &Dictionary{
		slices: map[Domain][]Field{
			Social:      doc.Social,
			Economic:    doc.Economic,
			Housing:     doc.Housing,
			Demographic: doc.Demographic,
			FoodAccess:  doc.FoodAccess,
		},
		index:      make(map[Domain]map[string]int, len(Domains)),
		storeTypes: doc.StoreTypes,
		sources:    doc.Sources,
	}

	for domain, fields := range d.slices {
		idx := make(map[string]int, len(fields))
		for i, f := range fields {
			if f.Code == "" {
				return nil, fmt.Errorf("%s field %d has no code", domain, i)
			}
			if _, dup := idx[f.Code]; dup {
				return nil, fmt.Errorf("duplicate %s field code %s", domain, f.Code)
			}
			idx[f.Code] = i
		}
		d.index[domain] = idx
	}

	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default returns the embedded dictionary. It panics if the embedded tables
// do not parse, which the package tests rule out.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		d, err := Parse(fieldsYAML)
		if err != nil {
			panic(err)
		}
		defaultDict = d
	})
	return defaultDict
}

// ParseDomain resolves a domain name case-insensitively.
func ParseDomain(name string) (Domain, error) {
	candidate := Domain(strings.ToLower(strings.TrimSpace(name)))
	for _, d := range Domains {
		if d == candidate {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, name)
}

// Slice returns a copy of one domain's fields in declaration order.
func (d *Dictionary) Slice(domain Domain) ([]Field, error) {
	fields, ok := d.slices[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out, nil
}

// Lookup finds a field by code within a domain.
func (d *Dictionary) Lookup(domain Domain, code string) (Field, bool) {
	i, ok := d.index[domain][code]
	if !ok {
		return Field{}, false
	}
	return d.slices[domain][i], true
}

// All returns the union of every slice. A code present in several slices
// keeps the position of its first occurrence and the metadata of its last.
func (d *Dictionary) All() []Field {
	var out []Field
	pos := make(map[string]int)
	for _, domain := range Domains {
		for _, f := range d.slices[domain] {
			if i, seen := pos[f.Code]; seen {
				out[i] = f
				continue
			}
			pos[f.Code] = len(out)
			out = append(out, f)
		}
	}
	return out
}

// StoreTypes returns the known retailer type vocabulary.
func (d *Dictionary) StoreTypes() []StoreType {
	out := make([]StoreType, len(d.storeTypes))
	copy(out, d.storeTypes)
	return out
}

// Source returns the dataset description for a survey domain.
func (d *Dictionary) Source(domain Domain) (Source, bool) {
	for _, s := range d.sources {
		if s.Domain == domain {
			return s, true
		}
	}
	return Source{}, false
}

// Categories returns the distinct non-empty categories of fields in
// first-seen order.
func Categories(fields []Field) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if f.Category == "" || seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		out = append(out, f.Category)
	}
	return out
}

// FieldsByCategory filters fields to one category, preserving order.
func FieldsByCategory(fields []Field, category string) []Field {
	var out []Field
	for _, f := range fields {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}
