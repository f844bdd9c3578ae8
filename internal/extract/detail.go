package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The listing site serves several page generations; each selector chain is
// ordered from most to least specific.

var titleSelectors = []string{
	"h1.topcard__title",
	"h1.jobs-unified-top-card__job-title",
	"h1",
	"h2.topcard__title",
	"h2.t-24",
	"div.job-title",
	"span.job-title",
}

var descriptionSelectors = []string{
	"div.description__text",
	"div.show-more-less-html__markup",
	"div.job-description",
	"div.jobs-description__content",
	"div.jobs-box__html-content",
	"section.description",
	"div.jobs-description",
	"div#job-details",
}

// minFallbackDescLen guards the last-resort container sweep against picking
// up navigation chrome.
const minFallbackDescLen = 100

// Title extracts the job title from a detail page, or "" when none is found.
func Title(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}

	for _, sel := range titleSelectors {
		if text := collapse(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}

	// og:title usually reads "Job Title - Company | Site".
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if idx := strings.Index(content, "|"); idx >= 0 {
			content = content[:idx]
		}
		return collapse(content)
	}
	return ""
}

// Description extracts the job description text, or "" when none is found.
func Description(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	for _, sel := range descriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := collapse(node.Text()); text != "" {
			return text
		}
	}

	// Last resort: any container whose class mentions the description.
	var found string
	doc.Find("div, section").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		if !strings.Contains(lower, "description") && !strings.Contains(lower, "job-details") {
			return true
		}
		if text := collapse(sel.Text()); len(text) >= minFallbackDescLen {
			found = text
			return false
		}
		return true
	})
	return found
}

// collapse trims and normalizes interior whitespace.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
