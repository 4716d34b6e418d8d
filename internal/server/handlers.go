package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/detect"
	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/go-chi/chi/v5"
)

// fallbackReply is returned when the upstream AI service produces no usable
// text.
const fallbackReply = "I'm sorry, I couldn't process that request."

type chatRequest struct {
	History    []model.ChatMessage `json:"history"`
	NewMessage string              `json:"newMessage"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.NewMessage == "" {
		respondError(w, http.StatusBadRequest, "Invalid request: newMessage is required.")
		return
	}

	if s.assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "AI service is not configured.")
		return
	}

	text, err := s.assistant.Chat(r.Context(), req.History, req.NewMessage)
	if err != nil {
		slog.Error("Assistant request failed", "error", err)
		respondError(w, http.StatusBadGateway, "AI service temporarily unavailable.")
		return
	}
	if text == "" {
		text = fallbackReply
	}

	respondJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	scanner := detect.NewScanner(s.storage, s.thresholds)
	scan, groups, err := scanner.Run(r.Context())
	if err != nil {
		slog.Error("Scan failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Scan failed.")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"scan":      scan,
		"anomalies": groups,
	})
}

func (s *Server) handleScanHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.storage.GetScanHistory(r.Context())
	if err != nil {
		slog.Error("Failed to load scan history", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load scan history.")
		return
	}
	if history == nil {
		history = []model.ScanResult{}
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleScanSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.storage.GetScanSummary(r.Context())
	if err != nil {
		slog.Error("Failed to compute scan summary", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to compute summary.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scanCount":      summary.ScanCount,
		"totalAnomalies": summary.TotalAnomalies,
		"totalExposure":  summary.TotalExposure,
	})
}

func (s *Server) handleListAnomalies(w http.ResponseWriter, r *http.Request) {
	scanID := r.URL.Query().Get("scan")
	groups, err := s.storage.GetAnomalyGroups(r.Context(), scanID)
	if err != nil {
		slog.Error("Failed to load anomalies", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load anomalies.")
		return
	}
	if groups == nil {
		groups = []model.AnomalyGroup{}
	}
	respondJSON(w, http.StatusOK, groups)
}

type anomalyPatch struct {
	InvestigationStatus model.InvestigationStatus `json:"investigationStatus"`
}

func (s *Server) handleUpdateAnomaly(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	scanID := r.URL.Query().Get("scan")

	var patch anomalyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch.InvestigationStatus == "" {
		respondError(w, http.StatusBadRequest, "Invalid request: investigationStatus is required.")
		return
	}

	err := s.storage.UpdateInvestigationStatus(r.Context(), scanID, groupID, patch.InvestigationStatus)
	switch {
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "Anomaly group not found.")
	case errors.Is(err, common.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.Error("Failed to update investigation status", "group_id", groupID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update anomaly.")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.storage.GetDetectionRules(r.Context())
	if err != nil {
		slog.Error("Failed to load detection rules", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load rules.")
		return
	}
	if rules == nil {
		rules = []model.DetectionRule{}
	}
	respondJSON(w, http.StatusOK, rules)
}

type ruleRequest struct {
	Type     model.RuleType `json:"type"`
	Value    string         `json:"value"`
	IsActive *bool          `json:"isActive,omitempty"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	rule := model.DetectionRule{Type: req.Type, Value: req.Value, IsActive: true}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.storage.CreateDetectionRule(r.Context(), &rule)
	switch {
	case errors.Is(err, common.ErrDuplicateEntry):
		respondError(w, http.StatusConflict, "An identical rule already exists.")
		return
	case err != nil:
		slog.Error("Failed to create detection rule", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create rule.")
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

type rulePatch struct {
	IsActive *bool `json:"isActive"`
}

func (s *Server) handleToggleRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rule ID.")
		return
	}

	var patch rulePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch.IsActive == nil {
		respondError(w, http.StatusBadRequest, "Invalid request: isActive is required.")
		return
	}

	err = s.storage.SetDetectionRuleActive(r.Context(), id, *patch.IsActive)
	switch {
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "Rule not found.")
	case err != nil:
		slog.Error("Failed to toggle detection rule", "rule_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update rule.")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rule ID.")
		return
	}

	err = s.storage.DeleteDetectionRule(r.Context(), id)
	switch {
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "Rule not found.")
	case err != nil:
		slog.Error("Failed to delete detection rule", "rule_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete rule.")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
