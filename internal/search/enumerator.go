// Package search expands a user's saved criteria into the list of
// results-page queries a scan will walk.
package search

import (
	"net/url"
	"strings"

	"github.com/jobscout-dev/jobscout/internal/model"
)

const searchBaseURL = "https://www.linkedin.com/jobs/search/"

// Work-type filter values used by the listing site's search endpoint.
const (
	workTypeOnSite = "1"
	workTypeRemote = "2"
	workTypeHybrid = "3"
)

// distanceMiles is the search radius applied to location-bound queries.
const distanceMiles = "75"

// Enumerate produces the cross-product of keywords and locations as fully
// formed search queries. The literal location "remote" (any casing) becomes a
// single remote-work query; every other location yields an on-site and a
// hybrid variant. Empty keyword or location lists produce zero queries.
func Enumerate(c model.UserCriteria) []model.SearchQuery {
	var queries []model.SearchQuery

	for _, location := range c.Locations {
		for _, keyword := range c.Keywords {
			if strings.EqualFold(strings.TrimSpace(location), "remote") {
				queries = append(queries, model.SearchQuery{
					Keyword:  keyword,
					Location: location,
					URL:      buildURL(keyword, "", workTypeRemote),
				})
				continue
			}
			queries = append(queries,
				model.SearchQuery{
					Keyword:  keyword,
					Location: location,
					URL:      buildURL(keyword, location, workTypeOnSite),
				},
				model.SearchQuery{
					Keyword:  keyword,
					Location: location,
					URL:      buildURL(keyword, location, workTypeHybrid),
				},
			)
		}
	}

	return queries
}

func buildURL(keyword, location, workType string) string {
	params := url.Values{}
	params.Set("keywords", keyword)
	if location != "" {
		params.Set("location", location)
		params.Set("distance", distanceMiles)
	}
	params.Set("f_WT", workType)
	return searchBaseURL + "?" + params.Encode()
}
