// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// duckDuckGoBase is the HTML search endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckDuckGoBase = "https://html.duckduckgo.com/html/"

// searchMaxResults caps how many search hits one lookup processes.
const searchMaxResults = 5

// WebSearch finds provider addresses and websites through web search.
// It is the fallback source when the registry has no usable record.
type WebSearch struct {
	Client *http.Client
	Config types.HTTPConfig
}

// searchHit is one parsed search result.
type searchHit struct {
	Title   string
	URL     string
	Snippet string
}

// usStates is the set of valid two-letter state codes, used to reject
// regex matches that only look like a state.
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
	"DC": true,
}

// Address regex patterns, tried in order of specificity.
var (
	// "123 Main St, Los Angeles, CA 90015"
	fullAddressPattern = regexp.MustCompile(`(?i)(\d+\s+[A-Za-z0-9\s,\.]+?),\s*([A-Za-z\s]+),\s*([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)`)
	// "123 Main Street 90015"
	streetZipPattern = regexp.MustCompile(`(?i)(\d+\s+[A-Za-z0-9\s,\.]+?)\s+(\d{5}(?:-\d{4})?)`)
	// "Los Angeles, CA" near a street match
	cityStatePattern = regexp.MustCompile(`(?i)([A-Za-z\s]+),\s*([A-Za-z]{2})`)
	// "located in Los Angeles, CA"
	locatedPattern = regexp.MustCompile(`(?i)(?:located\s+in|address[:\s]+|in\s+)([A-Za-z\s]+),\s*([A-Za-z]{2})`)
)

// skipDomains are hosts that never serve as an organization's own site.
var skipDomains = []string{
	"facebook.com", "twitter.com", "linkedin.com", "wikipedia.org",
	"yelp.com", "healthgrades.com", "vitals.com", "google.com",
}

// LookupAddress searches the web for the organization's street address.
// A nil result with a nil error means the search ran but no address
// could be parsed from the results.
func (w *WebSearch) LookupAddress(ctx context.Context, name, state string) (*types.AddressFields, error) {
	query := fmt.Sprintf("%q hospital address location", strings.TrimSpace(name))
	if state != "" {
		query = fmt.Sprintf("%q %s hospital address location", strings.TrimSpace(name), strings.ToUpper(state))
	}

	hits, err := w.search(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, hit := range hits {
		text := hit.Title + " " + hit.Snippet + " " + hit.URL
		if fields := extractAddress(text); fields != nil {
			return fields, nil
		}
	}
	return nil, nil
}

// LookupWebsite searches the web for the organization's official site
// and returns the best-scoring URL, or "" when nothing qualifies.
func (w *WebSearch) LookupWebsite(ctx context.Context, name, state string) (string, error) {
	query := fmt.Sprintf("%q hospital official website", strings.TrimSpace(name))
	if state != "" {
		query = fmt.Sprintf("%q %s hospital official website", strings.TrimSpace(name), strings.ToUpper(state))
	}

	hits, err := w.search(ctx, query)
	if err != nil {
		return "", err
	}
	return bestWebsite(hits, name), nil
}

func (w *WebSearch) search(ctx context.Context, query string) ([]searchHit, error) {
	reqURL := duckDuckGoBase + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// The HTML endpoint refuses obvious non-browser agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	return parseSearchResults(string(body), searchMaxResults)
}

// parseSearchResults extracts hits from the DuckDuckGo HTML page. Each
// hit lives in a div whose class contains both "result" and
// "results_links".
func parseSearchResults(page string, maxResults int) ([]searchHit, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing search HTML: %w", err)
	}

	var hits []searchHit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				hit := extractHit(n)
				if hit.URL != "" && hit.Title != "" {
					hits = append(hits, hit)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits, nil
}

func extractHit(n *html.Node) searchHit {
	var hit searchHit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result__a") {
				hit.URL = decodeRedirect(attrValue(n, "href"))
				hit.Title = textContent(n)
			} else if strings.Contains(class, "result__snippet") {
				hit.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return hit
}

// decodeRedirect unwraps DuckDuckGo's /l/?uddg= redirect URLs.
func decodeRedirect(raw string) string {
	const prefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(raw, prefix) {
		return raw
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return raw
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// extractAddress pulls address components out of free text. It tries a
// full street/city/state/zip pattern first, then street+zip with a
// nearby city/state, then city/state alone as a partial result. Any
// state code must be a real one.
func extractAddress(text string) *types.AddressFields {
	if m := fullAddressPattern.FindStringSubmatch(text); m != nil {
		state := strings.ToUpper(m[3])
		if usStates[state] {
			return &types.AddressFields{
				Address: strings.TrimSpace(m[1]),
				City:    strings.TrimSpace(m[2]),
				State:   state,
				ZipCode: m[4],
			}
		}
	}

	if m := streetZipPattern.FindStringSubmatch(text); m != nil {
		if cs := cityStatePattern.FindStringSubmatch(text); cs != nil {
			state := strings.ToUpper(cs[2])
			if usStates[state] {
				return &types.AddressFields{
					Address: strings.TrimSpace(m[1]),
					City:    strings.TrimSpace(cs[1]),
					State:   state,
					ZipCode: m[2],
				}
			}
		}
	}

	if m := locatedPattern.FindStringSubmatch(text); m != nil {
		state := strings.ToUpper(m[2])
		if usStates[state] {
			return &types.AddressFields{
				City:  strings.TrimSpace(m[1]),
				State: state,
			}
		}
	}

	return nil
}

// bestWebsite scores hits for likelihood of being the organization's
// own site: rank position, name words in the domain, a reputable TLD,
// and the name appearing in the title. Tracking query strings are
// stripped from the winner.
func bestWebsite(hits []searchHit, name string) string {
	nameLower := strings.ToLower(name)

	bestScore := 0
	var best string

	for i, hit := range hits {
		if !strings.HasPrefix(hit.URL, "http") {
			continue
		}
		hitURL := strings.ToLower(hit.URL)
		if skippedDomain(hitURL) {
			continue
		}

		u, err := url.Parse(hit.URL)
		if err != nil {
			continue
		}
		domain := strings.ToLower(u.Host)

		score := (10 - i) * 10

		for _, word := range strings.Fields(nameLower) {
			if len(word) > 3 && strings.Contains(domain, word) {
				score += 50
				break
			}
		}

		switch {
		case strings.HasSuffix(domain, ".org"):
			score += 30
		case strings.HasSuffix(domain, ".edu"):
			score += 25
		case strings.HasSuffix(domain, ".com"):
			score += 20
		}

		if strings.Contains(strings.ToLower(hit.Title), nameLower) {
			score += 20
		}

		if score > bestScore {
			bestScore = score
			best = hit.URL
		}
	}

	if idx := strings.Index(best, "?"); idx > 0 {
		best = best[:idx]
	}
	return best
}

func skippedDomain(hitURL string) bool {
	for _, d := range skipDomains {
		if strings.Contains(hitURL, d) {
			return true
		}
	}
	return false
}
