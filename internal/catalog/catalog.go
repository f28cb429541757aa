// Package catalog answers vehicle reference lookups (makes, models, trims,
// years and attribute lists) from either the embedded YAML catalog or the
// taxonomy tables.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalog.yaml
var catalogYAML []byte

const searchLimit = 20

// Provider is implemented by Static and Database.
type Provider interface {
	Makes(ctx context.Context) ([]string, error)
	// Models returns nil for an unknown make.
	Models(ctx context.Context, makeName string) ([]string, error)
	// Vehicle reports false for an unknown make/model pair.
	Vehicle(ctx context.Context, makeName, model string) (Vehicle, bool, error)
	Search(ctx context.Context, query string) ([]Match, error)
	Attribute(ctx context.Context, attr Attribute) ([]string, error)
}

type Attribute string

const (
	BodyTypes     Attribute = "body_types"
	Transmissions Attribute = "transmissions"
	FuelTypes     Attribute = "fuel_types"
)

// Vehicle is everything known about one make/model. Years are newest first.
type Vehicle struct {
	Make          string   `json:"make"`
	Model         string   `json:"model"`
	Years         []int    `json:"years"`
	Trims         []string `json:"trims"`
	BodyTypes     []string `json:"body_types"`
	Transmissions []string `json:"transmissions"`
	FuelTypes     []string `json:"fuel_types"`
}

type Match struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Label string `json:"label"`
}

// File is the on-disk shape of catalog.yaml.
type File struct {
	Makes []MakeEntry `yaml:"makes"`
}

type MakeEntry struct {
	Name   string       `yaml:"name"`
	Models []ModelEntry `yaml:"models"`
}

type ModelEntry struct {
	Name          string    `yaml:"name"`
	Years         YearRange `yaml:"years"`
	Trims         []string  `yaml:"trims"`
	BodyTypes     []string  `yaml:"body_types"`
	Transmissions []string  `yaml:"transmissions"`
	FuelTypes     []string  `yaml:"fuel_types"`
}

// YearRange is inclusive on both ends.
type YearRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Descending lists every year of the range, newest first.
func (y YearRange) Descending() []int {
	if y.To < y.From {
		return []int{}
	}
	out := make([]int, 0, y.To-y.From+1)
	for year := y.To; year >= y.From; year-- {
		out = append(out, year)
	}
	return out
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := map[string]bool{}
	for _, mk := range f.Makes {
		key := strings.ToLower(mk.Name)
		if mk.Name == "" || seen[key] {
			return nil, fmt.Errorf("catalog: empty or duplicate make %q", mk.Name)
		}
		seen[key] = true
		for _, m := range mk.Models {
			if m.Name == "" {
				return nil, fmt.Errorf("catalog: make %s has a model without a name", mk.Name)
			}
			if m.Years.From == 0 || m.Years.To < m.Years.From {
				return nil, fmt.Errorf("catalog: %s %s has an invalid year range", mk.Name, m.Name)
			}
		}
	}
	return &f, nil
}

// NewProvider returns the provider named by CATALOG_SOURCE: "database"
// reads the taxonomy tables, anything else the embedded file.
func NewProvider(source string, db *gorm.DB) (Provider, error) {
	if source == "database" {
		return NewDatabase(db), nil
	}
	return LoadStatic()
}

// Embedded returns the catalog compiled into the binary.
func Embedded() (*File, error) {
	return Parse(catalogYAML)
}

// search matches makes by substring first; when a make matches, all its
// models are returned, otherwise its models are matched individually.
func search(makes []MakeEntry, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Match{}
	for _, mk := range makes {
		makeHit := strings.Contains(strings.ToLower(mk.Name), q)
		for _, m := range mk.Models {
			if makeHit || strings.Contains(strings.ToLower(m.Name), q) {
				out = append(out, Match{Make: mk.Name, Model: m.Name, Label: mk.Name + " " + m.Name})
				if len(out) == searchLimit {
					return out
				}
			}
		}
	}
	return out
}

func sorted(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}

func distinctSorted(groups ...[]string) []string {
	set := map[string]struct{}{}
	for _, g := range groups {
		for _, v := range g {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
