package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudradar/fraud-radar/internal/detect"
	"github.com/fraudradar/fraud-radar/internal/ledger"
	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/fraudradar/fraud-radar/internal/storage"
)

type stubAssistant struct {
	reply string
	err   error
	calls int
}

func (s *stubAssistant) Chat(_ context.Context, _ []model.ChatMessage, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newTestServer(t *testing.T, assistant *stubAssistant) (*Server, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	var srv *Server
	if assistant != nil {
		srv = New(store, assistant, detect.DefaultThresholds())
	} else {
		srv = New(store, nil, detect.DefaultThresholds())
	}
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	t.Run("returns the assistant reply", func(t *testing.T) {
		assistant := &stubAssistant{reply: "The splitting group looks deliberate."}
		srv, _ := newTestServer(t, assistant)

		rec := doRequest(t, srv, http.MethodPost, "/api/chat", chatRequest{
			NewMessage: "Why was TXN-S1 flagged?",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "The splitting group looks deliberate.", resp["text"])
		assert.Equal(t, 1, assistant.calls)
	})

	t.Run("rejects an empty message", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubAssistant{reply: "hi"})
		rec := doRequest(t, srv, http.MethodPost, "/api/chat", chatRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubAssistant{reply: "hi"})

		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unconfigured assistant returns 503", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		rec := doRequest(t, srv, http.MethodPost, "/api/chat", chatRequest{NewMessage: "hello"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("upstream failure returns 502", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubAssistant{err: errors.New("timeout")})
		rec := doRequest(t, srv, http.MethodPost, "/api/chat", chatRequest{NewMessage: "hello"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("empty reply falls back to a canned message", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubAssistant{reply: ""})
		rec := doRequest(t, srv, http.MethodPost, "/api/chat", chatRequest{NewMessage: "hello"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, fallbackReply, resp["text"])
	})
}

func TestScanEndpoints(t *testing.T) {
	srv, store := newTestServer(t, nil)
	ctx := context.Background()
	require.NoError(t, store.SaveTransactions(ctx, ledger.SampleTransactions()))

	rec := doRequest(t, srv, http.MethodPost, "/api/scans", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Scan      model.ScanResult     `json:"scan"`
		Anomalies []model.AnomalyGroup `json:"anomalies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.ScanCompleted, created.Scan.Status)
	assert.Equal(t, 3, created.Scan.AnomaliesFound)
	assert.Len(t, created.Anomalies, 3)

	t.Run("history lists the scan", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/scans", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var history []model.ScanResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		require.Len(t, history, 1)
		assert.Equal(t, created.Scan.ID, history[0].ID)
	})

	t.Run("summary aggregates history", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/scans/summary", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var summary struct {
			ScanCount      int     `json:"scanCount"`
			TotalAnomalies int     `json:"totalAnomalies"`
			TotalExposure  float64 `json:"totalExposure"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, 1, summary.ScanCount)
		assert.Equal(t, 3, summary.TotalAnomalies)
		assert.InDelta(t, 8850.0, summary.TotalExposure, 0.001)
	})

	t.Run("anomalies default to the latest scan", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/anomalies", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var groups []model.AnomalyGroup
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
		assert.Len(t, groups, 3)
	})
}

func TestScanHistoryEmpty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/scans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdateAnomalyEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	ctx := context.Background()
	require.NoError(t, store.SaveTransactions(ctx, ledger.SampleTransactions()))

	rec := doRequest(t, srv, http.MethodPost, "/api/scans", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Anomalies []model.AnomalyGroup `json:"anomalies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Anomalies)
	groupID := created.Anomalies[0].ID

	t.Run("valid transition", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/anomalies/"+groupID,
			anomalyPatch{InvestigationStatus: model.InvestigationInvestigating})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid transition returns 409", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/anomalies/"+groupID,
			anomalyPatch{InvestigationStatus: model.InvestigationOpen})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown group returns 404", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/anomalies/ANOM-NOPE",
			anomalyPatch{InvestigationStatus: model.InvestigationDismissed})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing status returns 400", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/anomalies/"+groupID, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRuleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/rules", ruleRequest{
		Type:  model.RuleExcludeVendor,
		Value: "Office Max",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var rule model.DetectionRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	assert.NotZero(t, rule.ID)
	assert.True(t, rule.IsActive)

	t.Run("duplicate rule returns 409", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/rules", ruleRequest{
			Type:  model.RuleExcludeVendor,
			Value: "Office Max",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid rule returns 400", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/rules", ruleRequest{
			Type:  model.RuleAmountThreshold,
			Value: "not-a-number",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list includes the rule", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/rules", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var rules []model.DetectionRule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
		assert.Len(t, rules, 1)
	})

	id := strconv.FormatInt(rule.ID, 10)
	disabled := false

	t.Run("toggle", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/rules/"+id, rulePatch{IsActive: &disabled})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("toggle unknown rule returns 404", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPatch, "/api/rules/999", rulePatch{IsActive: &disabled})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/rules/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, srv, http.MethodDelete, "/api/rules/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/rules", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
