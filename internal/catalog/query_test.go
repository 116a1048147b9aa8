package catalog

import (
	"testing"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

// testSnapshot mirrors the three-record dataset used throughout the query
// contract tests.
func testSnapshot() *Snapshot {
	return newSnapshot([]Spa{
		{ID: 1, Title: "Ubud Wellness", Address: "Jl. Raya Ubud 1", Location: "Ubud",
			Budget: intPtr(2), Rating: floatPtr(4.5), Treatments: []string{"Massage"}},
		{ID: 2, Title: "Seminyak Retreat", Address: "Jl. Kayu Aya 99", Location: "Seminyak",
			Treatments: []string{"Facial", "Massage"}},
		{ID: 3, Title: "Sari Spa", Address: "Jl. Monkey Forest 3", Location: "Ubud",
			Budget: intPtr(1), Rating: floatPtr(3.0), Treatments: []string{}},
	})
}

func itemIDs(r Result) []int {
	ids := make([]int, len(r.Items))
	for i, s := range r.Items {
		ids[i] = s.ID
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQuery_LocationFilterAndRatingSort(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{Location: "ubud", Sort: SortRatingDesc, Page: 1, PageSize: 10})

	if got.Total != 2 {
		t.Errorf("Total = %d, want 2", got.Total)
	}
	if got.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", got.PageCount)
	}
	if want := []int{1, 3}; !equalIDs(itemIDs(got), want) {
		t.Errorf("item ids = %v, want %v", itemIDs(got), want)
	}
}

func TestQuery_TreatmentFilterCaseInsensitive(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{Treatment: "massage"})

	if want := []int{1, 2}; !equalIDs(itemIDs(got), want) {
		t.Errorf("item ids = %v, want %v", itemIDs(got), want)
	}
}

func TestQuery_PageClamping(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{Page: 99, PageSize: 20})

	if got.Page != 1 {
		t.Errorf("Page = %d, want 1 (clamped)", got.Page)
	}
	if len(got.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(got.Items))
	}

	// Negative and zero pages clamp up to 1.
	for _, page := range []int{0, -5} {
		got := sn.Query(QuerySpec{Page: page, PageSize: 20})
		if got.Page != 1 {
			t.Errorf("Query(page=%d).Page = %d, want 1", page, got.Page)
		}
	}
}

func TestQuery_PastLastPageMatchesLastPage(t *testing.T) {
	sn := testSnapshot()

	last := sn.Query(QuerySpec{Page: 2, PageSize: 2})
	far := sn.Query(QuerySpec{Page: 7, PageSize: 2})

	if last.Page != 2 || far.Page != 2 {
		t.Errorf("pages = %d, %d, want both 2", last.Page, far.Page)
	}
	if !equalIDs(itemIDs(last), itemIDs(far)) {
		t.Errorf("past-last-page items %v != last page items %v", itemIDs(far), itemIDs(last))
	}
}

func TestQuery_PaginationInvariant(t *testing.T) {
	sn := testSnapshot()

	for _, pageSize := range []int{1, 2, 3, 10} {
		first := sn.Query(QuerySpec{Page: 1, PageSize: pageSize})

		wantPages := (first.Total + pageSize - 1) / pageSize
		if wantPages < 1 {
			wantPages = 1
		}
		if first.PageCount != wantPages {
			t.Errorf("pageSize %d: PageCount = %d, want %d", pageSize, first.PageCount, wantPages)
		}

		seen := 0
		for page := 1; page <= first.PageCount; page++ {
			seen += len(sn.Query(QuerySpec{Page: page, PageSize: pageSize}).Items)
		}
		if seen != first.Total {
			t.Errorf("pageSize %d: items across pages = %d, want %d", pageSize, seen, first.Total)
		}
	}
}

func TestQuery_BudgetFilter(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{Budget: "2"})
	if want := []int{1}; !equalIDs(itemIDs(got), want) {
		t.Errorf("budget=2 item ids = %v, want %v", itemIDs(got), want)
	}

	// Records with absent budget never match a budget filter.
	got = sn.Query(QuerySpec{Budget: "0"})
	if got.Total != 0 {
		t.Errorf("budget=0 Total = %d, want 0", got.Total)
	}

	// Unparseable budget skips the predicate entirely.
	got = sn.Query(QuerySpec{Budget: "cheap"})
	if got.Total != 3 {
		t.Errorf("budget=cheap Total = %d, want 3 (filter ignored)", got.Total)
	}
}

func TestQuery_Search(t *testing.T) {
	sn := testSnapshot()

	tests := []struct {
		search string
		want   []int
	}{
		{"SEMINYAK", []int{2}},      // title, case-insensitive
		{"monkey forest", []int{3}}, // address
		{"jl.", []int{1, 2, 3}},     // address substring on all
		{"nowhere", []int{}},
	}

	for _, tt := range tests {
		got := sn.Query(QuerySpec{Search: tt.search})
		if !equalIDs(itemIDs(got), tt.want) {
			t.Errorf("search %q item ids = %v, want %v", tt.search, itemIDs(got), tt.want)
		}
	}
}

func TestQuery_SortOrders(t *testing.T) {
	sn := testSnapshot()

	tests := []struct {
		sort string
		want []int
	}{
		{SortRatingDesc, []int{1, 3, 2}}, // absent rating sorts as 0
		{SortRatingAsc, []int{2, 3, 1}},
		{SortBudgetDesc, []int{1, 3, 2}},
		{SortBudgetAsc, []int{2, 3, 1}},
		{SortTitleAsc, []int{3, 2, 1}},
		{SortTitleDesc, []int{1, 2, 3}},
		{"", []int{1, 2, 3}},      // no sort keeps load order
		{"bogus", []int{1, 2, 3}}, // unknown sort degrades to load order
	}

	for _, tt := range tests {
		got := sn.Query(QuerySpec{Sort: tt.sort})
		if !equalIDs(itemIDs(got), tt.want) {
			t.Errorf("sort %q item ids = %v, want %v", tt.sort, itemIDs(got), tt.want)
		}
	}
}

func TestQuery_SortStability(t *testing.T) {
	// Two records share rating 4.0; they must keep load order under every
	// repeated identical query.
	sn := newSnapshot([]Spa{
		{ID: 10, Title: "A", Rating: floatPtr(4.0)},
		{ID: 11, Title: "B", Rating: floatPtr(4.0)},
		{ID: 12, Title: "C", Rating: floatPtr(5.0)},
	})

	want := []int{12, 10, 11}
	for i := 0; i < 5; i++ {
		got := sn.Query(QuerySpec{Sort: SortRatingDesc})
		if !equalIDs(itemIDs(got), want) {
			t.Fatalf("run %d: item ids = %v, want %v", i, itemIDs(got), want)
		}
	}
}

func TestQuery_CombinedFilters(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{Location: "ubud", Treatment: "Massage"})
	if want := []int{1}; !equalIDs(itemIDs(got), want) {
		t.Errorf("combined filter item ids = %v, want %v", itemIDs(got), want)
	}
}

func TestQuery_DefaultPageSize(t *testing.T) {
	sn := testSnapshot()

	got := sn.Query(QuerySpec{})
	if got.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", got.PageSize, DefaultPageSize)
	}

	got = sn.Query(QuerySpec{PageSize: -3})
	if got.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d for negative input, want %d", got.PageSize, DefaultPageSize)
	}
}

func TestQuery_DoesNotMutateSnapshot(t *testing.T) {
	sn := testSnapshot()

	sn.Query(QuerySpec{Sort: SortTitleAsc})

	if ids := []int{sn.spas[0].ID, sn.spas[1].ID, sn.spas[2].ID}; !equalIDs(ids, []int{1, 2, 3}) {
		t.Errorf("snapshot order after sorted query = %v, want load order", ids)
	}
}

func TestFindByID(t *testing.T) {
	sn := testSnapshot()

	spa, ok := sn.FindByID("2")
	if !ok {
		t.Fatal("FindByID(\"2\") not found")
	}
	if spa.Title != "Seminyak Retreat" {
		t.Errorf("Title = %q, want %q", spa.Title, "Seminyak Retreat")
	}

	if _, ok := sn.FindByID("abc"); ok {
		t.Error("FindByID(\"abc\") found a record, want absent")
	}
	if _, ok := sn.FindByID("99"); ok {
		t.Error("FindByID(\"99\") found a record, want absent")
	}
}
