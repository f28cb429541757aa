package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Static serves a parsed catalog from memory. It is never mutated after
// construction and needs no locking.
type Static struct {
	file   *File
	makes  map[string]*MakeEntry
	models map[string]map[string]*ModelEntry
}

func NewStatic(f *File) *Static {
	s := &Static{
		file:   f,
		makes:  make(map[string]*MakeEntry, len(f.Makes)),
		models: make(map[string]map[string]*ModelEntry, len(f.Makes)),
	}
	for i := range f.Makes {
		mk := &f.Makes[i]
		key := strings.ToLower(mk.Name)
		s.makes[key] = mk
		s.models[key] = make(map[string]*ModelEntry, len(mk.Models))
		for j := range mk.Models {
			s.models[key][strings.ToLower(mk.Models[j].Name)] = &mk.Models[j]
		}
	}
	return s
}

// LoadStatic builds a Static provider over the embedded catalog.
func LoadStatic() (*Static, error) {
	f, err := Embedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}
	return NewStatic(f), nil
}

func (s *Static) Makes(context.Context) ([]string, error) {
	names := make([]string, 0, len(s.file.Makes))
	for _, mk := range s.file.Makes {
		names = append(names, mk.Name)
	}
	return sorted(names), nil
}

func (s *Static) Models(_ context.Context, makeName string) ([]string, error) {
	mk, ok := s.makes[strings.ToLower(strings.TrimSpace(makeName))]
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(mk.Models))
	for _, m := range mk.Models {
		names = append(names, m.Name)
	}
	return sorted(names), nil
}

func (s *Static) Vehicle(_ context.Context, makeName, model string) (Vehicle, bool, error) {
	mk, ok := s.makes[strings.ToLower(strings.TrimSpace(makeName))]
	if !ok {
		return Vehicle{}, false, nil
	}
	m, ok := s.models[strings.ToLower(mk.Name)][strings.ToLower(strings.TrimSpace(model))]
	if !ok {
		return Vehicle{}, false, nil
	}
	return Vehicle{
		Make:          mk.Name,
		Model:         m.Name,
		Years:         m.Years.Descending(),
		Trims:         append([]string{}, m.Trims...),
		BodyTypes:     append([]string{}, m.BodyTypes...),
		Transmissions: append([]string{}, m.Transmissions...),
		FuelTypes:     append([]string{}, m.FuelTypes...),
	}, true, nil
}

func (s *Static) Search(_ context.Context, query string) ([]Match, error) {
	return search(s.file.Makes, query), nil
}

func (s *Static) Attribute(_ context.Context, attr Attribute) ([]string, error) {
	var groups [][]string
	for _, mk := range s.file.Makes {
		for _, m := range mk.Models {
			switch attr {
			case BodyTypes:
				groups = append(groups, m.BodyTypes)
			case Transmissions:
				groups = append(groups, m.Transmissions)
			case FuelTypes:
				groups = append(groups, m.FuelTypes)
			default:
				return nil, fmt.Errorf("unknown catalog attribute %q", attr)
			}
		}
	}
	return distinctSorted(groups...), nil
}
