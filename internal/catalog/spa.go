// Package catalog provides the in-memory spa catalog: loading the CSV
// dataset, deriving filter facets, and answering filtered, sorted, and
// paginated listing queries. The catalog is read-only after load; a reload
// publishes a whole new snapshot atomically.
package catalog

import "strings"

// Spa is one catalog entry, normalized from a CSV row.
//
// String fields use "" as the canonical absent value. Budget and Rating are
// nil when the source field is empty; a present value is always finite.
// Treatments preserves source order and may contain duplicates, but never
// empty strings.
type Spa struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	Website     string   `json:"website"`
	Location    string   `json:"location"`
	Budget      *int     `json:"budget"`
	Rating      *float64 `json:"rating"`
	OpeningHour string   `json:"opening_hour"`
	ClosingHour string   `json:"closing_hour"`
	Treatments  []string `json:"treatments"`
}

// splitTreatments splits a ;-delimited treatments field, trimming whitespace
// and dropping empty segments. Order and duplicates are preserved.
func splitTreatments(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// budgetOrZero returns the budget value for sorting, treating absent as 0.
func (s *Spa) budgetOrZero() int {
	if s.Budget == nil {
		return 0
	}
	return *s.Budget
}

// ratingOrZero returns the rating value for sorting, treating absent as 0.
func (s *Spa) ratingOrZero() float64 {
	if s.Rating == nil {
		return 0
	}
	return *s.Rating
}
