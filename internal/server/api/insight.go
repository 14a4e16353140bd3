package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/insight"
	"github.com/nadhir/smartsign/internal/store"
)

// InsightHandler serves the AI insight endpoints: intent prediction, case
// briefs, and personalized greetings, all driven by stored visit history.
type InsightHandler struct {
	store   *store.Store
	intent  *insight.IntentEngine
	brief   *insight.BriefGenerator
	greeter *insight.GreetingGenerator
	log     *zap.Logger
}

// NewInsightHandler creates an InsightHandler.
func NewInsightHandler(s *store.Store, intent *insight.IntentEngine, brief *insight.BriefGenerator, greeter *insight.GreetingGenerator, log *zap.Logger) *InsightHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InsightHandler{store: s, intent: intent, brief: brief, greeter: greeter, log: log}
}

type insightRequest struct {
	UserID            string `json:"user_id"`
	CurrentLocation   string `json:"current_location"`
	IncludePrediction *bool  `json:"include_prediction,omitempty"`
}

// ServeHTTP routes the insight endpoints by path.
func (h *InsightHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.UserID = strings.ToUpper(strings.TrimSpace(req.UserID))
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	switch r.URL.Path {
	case "/api/predict-intent":
		h.predictIntent(w, r, req)
	case "/api/case-brief":
		h.caseBrief(w, r, req)
	case "/api/greeting":
		h.greeting(w, r, req)
	default:
		http.NotFound(w, r)
	}
}

func (h *InsightHandler) predictIntent(w http.ResponseWriter, r *http.Request, req insightRequest) {
	visits, ok := h.loadVisits(w, req.UserID)
	if !ok {
		return
	}

	prediction := h.intent.Predict(r.Context(), visits, req.CurrentLocation)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"prediction": prediction,
	})
}

func (h *InsightHandler) caseBrief(w http.ResponseWriter, r *http.Request, req insightRequest) {
	visits, ok := h.loadVisits(w, req.UserID)
	if !ok {
		return
	}

	logs, err := h.store.Visits().ListLogsByIC(req.UserID)
	if err != nil {
		h.log.Error("failed to load departmental logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load departmental logs")
		return
	}

	// The citizen's name is only used to scrub it from the narrative.
	citizenName := ""
	if profile, err := h.store.Profiles().GetByIC(req.UserID); err == nil {
		citizenName = profile.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error("failed to load profile", zap.Error(err))
	}

	brief := h.brief.Generate(r.Context(), visits, logs, req.CurrentLocation, citizenName)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"brief":   brief,
	})
}

func (h *InsightHandler) greeting(w http.ResponseWriter, r *http.Request, req insightRequest) {
	visits, ok := h.loadVisits(w, req.UserID)
	if !ok {
		return
	}

	var prediction *insight.Prediction
	if req.IncludePrediction == nil || *req.IncludePrediction {
		prediction = h.intent.Predict(r.Context(), visits, req.CurrentLocation)
	}

	greeting := h.greeter.Generate(r.Context(), visits, prediction, req.CurrentLocation)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"greeting": greeting,
	})
}

func (h *InsightHandler) loadVisits(w http.ResponseWriter, icNumber string) ([]*store.Visit, bool) {
	visits, err := h.store.Visits().ListByIC(icNumber)
	if err != nil {
		h.log.Error("failed to load visit history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load visit history")
		return nil, false
	}
	return visits, true
}
