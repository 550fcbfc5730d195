package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/service"
	"github.com/shivam222343/verbafest-backend/internal/store/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx)
	svc := service.New(memory.New(), h, zap.NewNop())
	return SetupRoutes(NewAPI(svc, zap.NewNop()), h)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestRoundLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/subevents", map[string]any{
		"name": "Debate", "format": "group",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var se struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &se)
	require.NotEmpty(t, se.ID)

	var ids []string
	for i := 0; i < 4; i++ {
		rec = doJSON(t, srv, http.MethodPost, "/subevents/"+se.ID+"/participants", map[string]any{
			"name": fmt.Sprintf("Participant %d", i), "year_of_study": 1 + i%2, "approved": true,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var p struct {
			ID string `json:"id"`
		}
		decodeBody(t, rec, &p)
		ids = append(ids, p.ID)
	}

	rec = doJSON(t, srv, http.MethodPost, "/subevents/"+se.ID+"/rounds", map[string]any{
		"round_number": 1, "name": "Prelims",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var round struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &round)

	rec = doJSON(t, srv, http.MethodPut, "/rounds/"+round.ID+"/shortlist", map[string]any{
		"participant_ids": ids,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/rounds/"+round.ID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var started struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &started)
	require.Equal(t, "active", started.Status)

	rec = doJSON(t, srv, http.MethodPost, "/rounds/"+round.ID+"/groups/auto", map[string]any{
		"group_size": 2, "strategy": "random",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var groups []struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &groups)
	require.Len(t, groups, 2)

	rec = doJSON(t, srv, http.MethodGet, "/subevents/"+se.ID+"/rounds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorKindsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/subevents", map[string]any{
		"name": "Quiz", "format": "individual",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var se struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &se)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantKind   string
	}{
		{
			name:       "unknown round is not_found",
			method:     http.MethodPost,
			path:       "/rounds/nope/start",
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name:       "bad format is validation_error",
			method:     http.MethodPost,
			path:       "/subevents",
			body:       map[string]any{"name": "x", "format": "squad"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation_error",
		},
		{
			name:       "claim with no topics is no_topics_available",
			method:     http.MethodPost,
			path:       "/topics/claim",
			body:       map[string]any{"sub_event_id": se.ID, "group_id": "g1", "panel_id": "p1"},
			wantStatus: http.StatusConflict,
			wantKind:   "no_topics_available",
		},
		{
			name:       "unknown access code is not_found",
			method:     http.MethodGet,
			path:       "/access/NOPE1234",
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			var body errorBody
			decodeBody(t, rec, &body)
			require.Equal(t, tt.wantKind, body.Error.Kind)
			require.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/subevents", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	require.Equal(t, "validation_error", body.Error.Kind)
}

func TestStatusOverrideRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/subevents", map[string]any{
		"name": "Debate", "format": "group",
	})
	var se struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &se)

	rec = doJSON(t, srv, http.MethodPost, "/subevents/"+se.ID+"/participants", map[string]any{
		"name": "Solo", "year_of_study": 2, "approved": true,
	})
	var p struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &p)

	rec = doJSON(t, srv, http.MethodPut, "/participants/"+p.ID+"/status", map[string]any{
		"status": "rejected",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		CurrentStatus string `json:"current_status"`
	}
	decodeBody(t, rec, &view)
	require.Equal(t, "rejected", view.CurrentStatus)

	rec = doJSON(t, srv, http.MethodDelete, "/participants/"+p.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	require.Equal(t, "registered", view.CurrentStatus)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
