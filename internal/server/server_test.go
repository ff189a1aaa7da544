// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/chat"
	"github.com/pdiddy/insight-engine/pkg/types"
)

type fakeEngine struct {
	resp chat.Response
	err  error
	got  string
}

func (f *fakeEngine) ProcessMessage(ctx context.Context, message string) (chat.Response, error) {
	f.got = message
	return f.resp, f.err
}

func newTestServer(engine *fakeEngine) *Server {
	return New(types.ServerConfig{Addr: ":0"}, engine, zap.NewNop().Sugar())
}

func postMessage(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestChatMessage(t *testing.T) {
	engine := &fakeEngine{resp: chat.Multi("first", "second")}
	s := newTestServer(engine)

	rec := postMessage(t, s, `{"message": "show contract templates", "session_id": "abc-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"first", "second"}, resp.Messages)
	assert.Equal(t, "abc-123", resp.SessionID)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Equal(t, "show contract templates", engine.got)
}

func TestChatMessageGeneratesSessionID(t *testing.T) {
	s := newTestServer(&fakeEngine{resp: chat.Text("hi")})

	rec := postMessage(t, s, `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.SessionID)
	assert.NoError(t, err)
}

func TestChatMessageValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message": ""}`},
		{"missing message", `{}`},
		{"too long", `{"message": "` + strings.Repeat("a", 1001) + `"}`},
		{"invalid json", `{"message": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeEngine{resp: chat.Text("unreachable")})
			rec := postMessage(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestChatMessageMaxLengthAccepted(t *testing.T) {
	s := newTestServer(&fakeEngine{resp: chat.Text("ok")})
	rec := postMessage(t, s, `{"message": "`+strings.Repeat("a", 1000)+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatMessageMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/message", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatMessageEngineError(t *testing.T) {
	s := newTestServer(&fakeEngine{err: errors.New("store unavailable")})
	rec := postMessage(t, s, `{"message": "top 5 HCOs"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
