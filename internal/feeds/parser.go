package feeds

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// headlinesFromFeed returns up to limit distinct item titles, newest first.
// Items without a publication date keep their feed order after dated ones.
// A non-positive limit returns every title.
func headlinesFromFeed(feed *gofeed.Feed, limit int) []string {
	items := make([]*gofeed.Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item != nil {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedParsed, items[j].PublishedParsed
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	seen := make(map[string]bool)
	headlines := []string{}
	for _, item := range items {
		title := strings.Join(strings.Fields(stripHTML(item.Title)), " ")
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		headlines = append(headlines, title)
		if limit > 0 && len(headlines) == limit {
			break
		}
	}
	return headlines
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}
