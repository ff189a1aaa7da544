// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// registryBase is the hospital enrollments dataset endpoint. Declared as
// a var so tests can substitute an httptest server.
var registryBase = "https://data.cms.gov/data-api/v1/dataset/f6f6505c-e8b0-4d57-b258-e2b94133aaf2/data"

// registryMaxResults caps how many candidate records one lookup pulls.
const registryMaxResults = 10

// Registry queries the public hospital enrollments dataset for provider
// addresses. It is the primary lookup source: structured, free, and
// keyless.
type Registry struct {
	Client *http.Client
	Config types.HTTPConfig
}

// Lookup searches the registry for the named organization, optionally
// narrowed to a state. It returns the best-scoring candidate's address,
// or nil when no candidate is usable. A nil result with a nil error
// means the registry answered but had no acceptable match.
func (r *Registry) Lookup(ctx context.Context, name, state string) (*types.AddressFields, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty organization name")
	}

	params := url.Values{
		"filter[ORGANIZATION NAME][condition][path]":     {"ORGANIZATION NAME"},
		"filter[ORGANIZATION NAME][condition][operator]": {"CONTAINS"},
		"filter[ORGANIZATION NAME][condition][value]":    {name},
		"limit":  {fmt.Sprintf("%d", registryMaxResults)},
		"offset": {"0"},
	}
	if state != "" {
		params.Set("filter[ENROLLMENT STATE][condition][path]", "ENROLLMENT STATE")
		params.Set("filter[ENROLLMENT STATE][condition][operator]", "=")
		params.Set("filter[ENROLLMENT STATE][condition][value]", strings.ToUpper(state))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, registryBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.Config.UserAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned HTTP %d", resp.StatusCode)
	}

	var records []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing registry response: %w", err)
	}

	return bestRegistryMatch(records, name, state), nil
}

// bestRegistryMatch scores each record against the search name and
// returns the address of the highest-scoring one, or nil when no record
// scores above zero or the winner lacks city and state.
func bestRegistryMatch(records []map[string]string, name, state string) *types.AddressFields {
	searchName := strings.ToLower(name)

	bestScore := 0
	var best map[string]string

	for _, rec := range records {
		orgName := strings.ToLower(rec["ORGANIZATION NAME"])
		recState := rec["ENROLLMENT STATE"]

		var score int
		switch {
		case orgName == searchName:
			score = 100
		case strings.Contains(orgName, searchName) || strings.Contains(searchName, orgName):
			score = 50
		default:
			score = 10 * wordOverlap(searchName, orgName)
		}

		if state != "" && strings.EqualFold(recState, state) {
			score += 25
		}

		if score > bestScore {
			bestScore = score
			best = rec
		}
	}

	if best == nil || bestScore <= 0 {
		return nil
	}

	fields := types.AddressFields{
		Address: best["ADDRESS LINE 1"],
		City:    best["CITY"],
		State:   best["ENROLLMENT STATE"],
		ZipCode: best["ZIP CODE"],
	}
	if !fields.Complete() {
		return nil
	}
	return &fields
}

func wordOverlap(a, b string) int {
	aWords := make(map[string]bool)
	for _, w := range strings.Fields(a) {
		aWords[w] = true
	}
	n := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		if aWords[w] && !seen[w] {
			seen[w] = true
			n++
		}
	}
	return n
}
