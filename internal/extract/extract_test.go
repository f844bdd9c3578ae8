package extract

import "testing"

func TestLinksFindsPostingsInDocumentOrder(t *testing.T) {
	html := []byte(`<html><body>
		<a href="/jobs/view/backend-engineer-at-acme-4012345678?refId=abc&trackingId=xyz">Backend</a>
		<a href="/about">About</a>
		<a href="https://www.linkedin.com/jobs/view/4099999999/">Other</a>
		<a href="/jobs/view/not-a-job">Broken</a>
	</body></html>`)

	links := Links(html)
	if len(links) != 2 {
		t.Fatalf("expected 2 job links, got %d: %+v", len(links), links)
	}
	if links[0].JobID != 4012345678 {
		t.Errorf("first job ID = %d", links[0].JobID)
	}
	if links[1].JobID != 4099999999 {
		t.Errorf("second job ID = %d", links[1].JobID)
	}
	if links[0].URL != "https://www.linkedin.com/jobs/view/backend-engineer-at-acme-4012345678" {
		t.Errorf("tracking params not stripped: %q", links[0].URL)
	}
}

func TestLinksMayRepeat(t *testing.T) {
	html := []byte(`<html><body>
		<a href="/jobs/view/4000000001">A</a>
		<a href="/jobs/view/4000000001?src=card">A again</a>
	</body></html>`)

	// Within-page dedup is the store's job, not the extractor's.
	links := Links(html)
	if len(links) != 2 {
		t.Fatalf("expected repeats to be preserved, got %d links", len(links))
	}
	if links[0].URL != links[1].URL {
		t.Errorf("equivalent URLs did not canonicalize to the same value: %q vs %q",
			links[0].URL, links[1].URL)
	}
}

func TestJobIDShapes(t *testing.T) {
	cases := []struct {
		url  string
		want int64
		ok   bool
	}{
		{"https://www.linkedin.com/jobs/view/4012345678", 4012345678, true},
		{"https://www.linkedin.com/jobs/view/4012345678/", 4012345678, true},
		{"https://www.linkedin.com/jobs/view/slug-name-4012345678", 4012345678, true},
		{"https://www.linkedin.com/jobs/view/4012345678?x=1", 4012345678, true},
		{"https://www.linkedin.com/jobs/view/no-digits", 0, false},
		{"https://www.linkedin.com/jobs/search/?keywords=x", 0, false},
	}
	for _, tc := range cases {
		got, ok := JobID(tc.url)
		if ok != tc.ok || got != tc.want {
			t.Errorf("JobID(%q) = (%d, %v), want (%d, %v)", tc.url, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTitleSelectorFallbacks(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "topcard",
			html: `<html><body><h1 class="topcard__title">  Backend   Engineer </h1></body></html>`,
			want: "Backend Engineer",
		},
		{
			name: "plain h1",
			html: `<html><body><h1>Platform Engineer</h1></body></html>`,
			want: "Platform Engineer",
		},
		{
			name: "og:title meta",
			html: `<html><head><meta property="og:title" content="SRE - Acme | JobSite"></head><body></body></html>`,
			want: "SRE - Acme",
		},
		{
			name: "nothing",
			html: `<html><body><p>not a job page</p></body></html>`,
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title([]byte(tc.html)); got != tc.want {
				t.Errorf("Title = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDescriptionSelectorFallbacks(t *testing.T) {
	html := `<html><body>
		<div class="show-more-less-html__markup">
			<p>We build systems.</p><p>You will own the backend.</p>
		</div>
	</body></html>`
	got := Description([]byte(html))
	if got != "We build systems. You will own the backend." {
		t.Errorf("Description = %q", got)
	}
}

func TestDescriptionIgnoresScripts(t *testing.T) {
	html := `<html><body>
		<div class="description__text"><script>var x = 1;</script>Real text here.</div>
	</body></html>`
	got := Description([]byte(html))
	if got != "Real text here." {
		t.Errorf("Description = %q", got)
	}
}

func TestDescriptionClassSweepNeedsLength(t *testing.T) {
	// A short "description"-classed element must not win the fallback sweep.
	html := `<html><body><div class="nav-description">menu</div></body></html>`
	if got := Description([]byte(html)); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}
