// Package extract parses listing-site HTML: job links out of search-result
// pages, and title/description out of job-detail pages.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const siteBaseURL = "https://www.linkedin.com"

// Posting URLs look like /jobs/view/backend-engineer-at-acme-4012345678 or
// /jobs/view/4012345678; the numeric tail is the stable posting ID.
var jobIDRe = regexp.MustCompile(`/jobs/view/(?:[^/?]*-)?(\d+)(?:[/?]|$)`)

// JobLink is one candidate posting found on a results page.
type JobLink struct {
	URL   string // canonicalized detail URL
	JobID int64
}

// Links returns the job-posting links in html in document order. Anchors
// whose href does not match the posting URL shape are discarded silently.
// The same posting may appear more than once; dedup is the store's concern.
func Links(html []byte) []JobLink {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var links []JobLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "/jobs/view/") {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = siteBaseURL + href
		}
		canonical := CanonicalURL(href)
		jobID, ok := JobID(canonical)
		if !ok {
			return
		}
		links = append(links, JobLink{URL: canonical, JobID: jobID})
	})
	return links
}

// CanonicalURL strips the query string and fragment so that the same posting
// maps to one URL regardless of tracking parameters.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// JobID extracts the numeric posting ID from a detail URL.
func JobID(jobURL string) (int64, bool) {
	m := jobIDRe.FindStringSubmatch(jobURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
