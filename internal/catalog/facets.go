package catalog

import "sort"

// Facets holds the distinct filterable values derived from the catalog, for
// populating filter dropdowns.
type Facets struct {
	Locations  []string `json:"locations"`
	Treatments []string `json:"treatments"`
	Budgets    []int    `json:"budgets"`
}

// Facets derives the facet sets from the snapshot. Locations and treatments
// are deduplicated and sorted ordinally; budgets ascend numerically. Records
// with an absent location or budget contribute nothing to those facets.
func (sn *Snapshot) Facets() Facets {
	locations := make(map[string]struct{})
	treatments := make(map[string]struct{})
	budgets := make(map[int]struct{})

	for _, s := range sn.spas {
		if s.Location != "" {
			locations[s.Location] = struct{}{}
		}
		for _, t := range s.Treatments {
			treatments[t] = struct{}{}
		}
		if s.Budget != nil {
			budgets[*s.Budget] = struct{}{}
		}
	}

	f := Facets{
		Locations:  make([]string, 0, len(locations)),
		Treatments: make([]string, 0, len(treatments)),
		Budgets:    make([]int, 0, len(budgets)),
	}
	for l := range locations {
		f.Locations = append(f.Locations, l)
	}
	for t := range treatments {
		f.Treatments = append(f.Treatments, t)
	}
	for b := range budgets {
		f.Budgets = append(f.Budgets, b)
	}

	sort.Strings(f.Locations)
	sort.Strings(f.Treatments)
	sort.Ints(f.Budgets)
	return f
}
