package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// IsScrapeURL returns true if the feed URL uses the scrape:// scheme,
// meaning headlines come from an HTML listing page rather than RSS.
func IsScrapeURL(feedURL string) bool {
	return strings.HasPrefix(feedURL, "scrape://")
}

// ScrapeURLToHTTPS converts a scrape:// URL to its https:// equivalent.
func ScrapeURLToHTTPS(feedURL string) string {
	return "https://" + strings.TrimPrefix(feedURL, "scrape://")
}

// scrapeHeadlines fetches a blog listing page and returns the text of its
// post headings.
func (f *Fetcher) scrapeHeadlines(ctx context.Context, pageURL string, limit int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %q: %w", pageURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q: HTTP %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body from %q: %w", pageURL, err)
	}

	return parseListingHTML(string(body), limit)
}

// parseListingHTML extracts post titles from a listing page. A post title is
// the text of an h2 or h3 element, which is how most blog indexes render
// their entries:
//
//	article
//	  h2 > a  -> title + href
//	  time    -> date
//
// Headings inside nav, header, footer and aside are skipped.
func parseListingHTML(body string, limit int) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	headlines := []string{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(headlines) >= limit {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "nav", "header", "footer", "aside", "script", "style":
				return
			case "h2", "h3":
				title := strings.Join(strings.Fields(textContent(n)), " ")
				if title != "" && !seen[title] {
					seen[title] = true
					headlines = append(headlines, title)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return headlines, nil
}

// textContent returns the concatenated text content of an HTML node and its children.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
