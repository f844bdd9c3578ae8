package search

import (
	"net/url"
	"strings"
	"testing"

	"github.com/jobscout-dev/jobscout/internal/model"
)

func TestEnumerateRemoteProducesSingleQuery(t *testing.T) {
	queries := Enumerate(model.UserCriteria{
		Keywords:  []string{"backend engineer"},
		Locations: []string{"Remote"},
	})

	if len(queries) != 1 {
		t.Fatalf("expected 1 query for remote, got %d", len(queries))
	}
	q := queries[0]
	if q.Keyword != "backend engineer" || q.Location != "Remote" {
		t.Errorf("unexpected query fields: %+v", q)
	}

	u, err := url.Parse(q.URL)
	if err != nil {
		t.Fatalf("parsing query URL: %v", err)
	}
	v := u.Query()
	if v.Get("keywords") != "backend engineer" {
		t.Errorf("keywords param = %q", v.Get("keywords"))
	}
	if v.Get("f_WT") != workTypeRemote {
		t.Errorf("f_WT param = %q, want %q", v.Get("f_WT"), workTypeRemote)
	}
	if v.Get("location") != "" {
		t.Error("remote query should not carry a location param")
	}
}

func TestEnumerateLocationProducesOnSiteAndHybrid(t *testing.T) {
	queries := Enumerate(model.UserCriteria{
		Keywords:  []string{"SOC analyst"},
		Locations: []string{"Winchester, Virginia"},
	})

	if len(queries) != 2 {
		t.Fatalf("expected 2 queries for a concrete location, got %d", len(queries))
	}

	seen := map[string]bool{}
	for _, q := range queries {
		u, err := url.Parse(q.URL)
		if err != nil {
			t.Fatalf("parsing %q: %v", q.URL, err)
		}
		v := u.Query()
		seen[v.Get("f_WT")] = true
		if v.Get("location") != "Winchester, Virginia" {
			t.Errorf("location param = %q", v.Get("location"))
		}
		if v.Get("distance") != distanceMiles {
			t.Errorf("distance param = %q", v.Get("distance"))
		}
	}
	if !seen[workTypeOnSite] || !seen[workTypeHybrid] {
		t.Errorf("expected on-site and hybrid variants, got %v", seen)
	}
}

func TestEnumerateCrossProductOrder(t *testing.T) {
	queries := Enumerate(model.UserCriteria{
		Keywords:  []string{"a", "b"},
		Locations: []string{"Remote", "remote"},
	})

	// 2 keywords × 2 remote locations = 4 queries, locations outermost.
	if len(queries) != 4 {
		t.Fatalf("expected 4 queries, got %d", len(queries))
	}
	want := []string{"a", "b", "a", "b"}
	for i, q := range queries {
		if q.Keyword != want[i] {
			t.Errorf("query %d keyword = %q, want %q", i, q.Keyword, want[i])
		}
	}
}

func TestEnumerateEmptyCriteria(t *testing.T) {
	if got := Enumerate(model.UserCriteria{Keywords: []string{"x"}}); len(got) != 0 {
		t.Errorf("expected no queries without locations, got %d", len(got))
	}
	if got := Enumerate(model.UserCriteria{Locations: []string{"Remote"}}); len(got) != 0 {
		t.Errorf("expected no queries without keywords, got %d", len(got))
	}
}

func TestRemoteLocationCaseInsensitive(t *testing.T) {
	queries := Enumerate(model.UserCriteria{
		Keywords:  []string{"x"},
		Locations: []string{"  REMOTE "},
	})
	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}
	if !strings.Contains(queries[0].URL, "f_WT="+workTypeRemote) {
		t.Errorf("expected remote work-type filter in %q", queries[0].URL)
	}
}
