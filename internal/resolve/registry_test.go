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

	"github.com/pdiddy/insight-engine/pkg/types"
)

func TestRegistryLookup(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"ORGANIZATION NAME": "TYRONE HOSPITAL", "ENROLLMENT STATE": "PA",
			 "ADDRESS LINE 1": "187 Hospital Drive", "CITY": "Tyrone", "ZIP CODE": "16686"},
			{"ORGANIZATION NAME": "TYRONE REGIONAL CLINIC", "ENROLLMENT STATE": "OH",
			 "ADDRESS LINE 1": "1 Elm St", "CITY": "Dayton", "ZIP CODE": "45402"}
		]`))
	}))
	defer server.Close()

	oldBase := registryBase
	registryBase = server.URL
	defer func() { registryBase = oldBase }()

	reg := &Registry{
		Client: &http.Client{Timeout: 5 * time.Second},
		Config: types.HTTPConfig{UserAgent: "insight-engine/test"},
	}

	got, err := reg.Lookup(context.Background(), "Tyrone Hospital", "PA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "187 Hospital Drive", got.Address)
	assert.Equal(t, "Tyrone", got.City)
	assert.Equal(t, "PA", got.State)
	assert.Equal(t, "16686", got.ZipCode)

	// Name and state filters reach the wire.
	assert.Equal(t, "Tyrone Hospital", gotQuery["filter[ORGANIZATION NAME][condition][value]"][0])
	assert.Equal(t, "PA", gotQuery["filter[ENROLLMENT STATE][condition][value]"][0])
}

func TestRegistryLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	oldBase := registryBase
	registryBase = server.URL
	defer func() { registryBase = oldBase }()

	reg := &Registry{Client: &http.Client{Timeout: 5 * time.Second}}
	_, err := reg.Lookup(context.Background(), "Anything", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestRegistryLookupEmptyName(t *testing.T) {
	reg := &Registry{Client: http.DefaultClient}
	_, err := reg.Lookup(context.Background(), "   ", "")
	assert.Error(t, err)
}

func TestBestRegistryMatch(t *testing.T) {
	records := []map[string]string{
		{"ORGANIZATION NAME": "mercy general hospital", "ENROLLMENT STATE": "CA",
			"ADDRESS LINE 1": "1 A St", "CITY": "Sacramento", "ZIP CODE": "95814"},
		{"ORGANIZATION NAME": "mercy clinic", "ENROLLMENT STATE": "MO",
			"ADDRESS LINE 1": "2 B St", "CITY": "St. Louis", "ZIP CODE": "63101"},
		{"ORGANIZATION NAME": "general medical group", "ENROLLMENT STATE": "CA",
			"ADDRESS LINE 1": "3 C St", "CITY": "Fresno", "ZIP CODE": "93650"},
	}

	tests := []struct {
		name     string
		search   string
		state    string
		wantCity string
		wantNil  bool
	}{
		{name: "exact name wins", search: "mercy general hospital", state: "", wantCity: "Sacramento"},
		{name: "state bonus breaks a substring tie", search: "mercy", state: "MO", wantCity: "St. Louis"},
		{name: "word overlap scores without substring", search: "general group", state: "", wantCity: "Fresno"},
		{name: "no overlap at all", search: "xyzzy", state: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestRegistryMatch(records, tt.search, tt.state)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCity, got.City)
		})
	}
}

func TestBestRegistryMatchRequiresCityAndState(t *testing.T) {
	records := []map[string]string{
		{"ORGANIZATION NAME": "mercy general", "ADDRESS LINE 1": "1 A St"},
	}
	assert.Nil(t, bestRegistryMatch(records, "mercy general", ""))
}
