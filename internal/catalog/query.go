package catalog

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the page size used when a query does not supply a
// positive one.
const DefaultPageSize = 20

// Sort orders accepted by Query. Any other value leaves the filtered records
// in load order.
const (
	SortRatingDesc = "rating_desc"
	SortRatingAsc  = "rating_asc"
	SortBudgetDesc = "budget_desc"
	SortBudgetAsc  = "budget_asc"
	SortTitleAsc   = "title_asc"
	SortTitleDesc  = "title_desc"
)

// QuerySpec is a listing request. All fields are optional; empty means "no
// constraint". Budget stays a string so that unparseable input degrades to no
// filter instead of an error, matching the permissive contract of the public
// listing endpoint.
type QuerySpec struct {
	Location  string
	Treatment string
	Budget    string
	Search    string
	Sort      string
	Page      int
	PageSize  int
}

// Result is one page of a listing query.
type Result struct {
	Total     int   `json:"total"`
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	PageSize  int   `json:"pageSize"`
	Items     []Spa `json:"items"`
}

// Query filters, sorts, and paginates the snapshot.
//
// Filters are AND-combined and each applies only when its spec field is
// non-empty. Malformed values never produce an error: a budget that fails to
// parse skips the budget predicate, an unknown sort keeps load order, and an
// out-of-range page is clamped into [1, pageCount].
func (sn *Snapshot) Query(spec QuerySpec) Result {
	filtered := sn.filter(spec)
	sortSpas(filtered, spec.Sort)

	pageSize := spec.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := spec.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Total:     total,
		Page:      page,
		PageCount: pageCount,
		PageSize:  pageSize,
		Items:     filtered[start:end],
	}
}

// filter returns the records matching every present predicate, in load order.
// The result is a fresh slice; the snapshot is never mutated.
func (sn *Snapshot) filter(spec QuerySpec) []Spa {
	budget, budgetOK := 0, false
	if spec.Budget != "" {
		if n, err := strconv.Atoi(spec.Budget); err == nil {
			budget, budgetOK = n, true
		}
		// Unparseable budget: predicate is skipped, not an error.
	}
	search := strings.ToLower(spec.Search)

	out := make([]Spa, 0, len(sn.spas))
	for _, s := range sn.spas {
		if spec.Location != "" && !strings.EqualFold(s.Location, spec.Location) {
			continue
		}
		if spec.Treatment != "" && !hasTreatment(s.Treatments, spec.Treatment) {
			continue
		}
		if budgetOK && (s.Budget == nil || *s.Budget != budget) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Title), search) &&
			!strings.Contains(strings.ToLower(s.Address), search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasTreatment(treatments []string, want string) bool {
	for _, t := range treatments {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

// sortSpas orders spas in place. The sort is stable: records with equal keys
// keep their filtered (load) order, so repeated identical queries paginate
// identically. Absent rating/budget compare as 0; title ordering is
// locale-aware and title_desc is the exact reverse of title_asc.
func sortSpas(spas []Spa, order string) {
	switch order {
	case SortRatingDesc:
		sort.SliceStable(spas, func(i, j int) bool {
			return spas[i].ratingOrZero() > spas[j].ratingOrZero()
		})
	case SortRatingAsc:
		sort.SliceStable(spas, func(i, j int) bool {
			return spas[i].ratingOrZero() < spas[j].ratingOrZero()
		})
	case SortBudgetDesc:
		sort.SliceStable(spas, func(i, j int) bool {
			return spas[i].budgetOrZero() > spas[j].budgetOrZero()
		})
	case SortBudgetAsc:
		sort.SliceStable(spas, func(i, j int) bool {
			return spas[i].budgetOrZero() < spas[j].budgetOrZero()
		})
	case SortTitleAsc:
		c := collate.New(language.Und)
		sort.SliceStable(spas, func(i, j int) bool {
			return c.CompareString(spas[i].Title, spas[j].Title) < 0
		})
	case SortTitleDesc:
		c := collate.New(language.Und)
		sort.SliceStable(spas, func(i, j int) bool {
			return c.CompareString(spas[i].Title, spas[j].Title) > 0
		})
	}
	// Unknown or empty sort keeps load order.
}
