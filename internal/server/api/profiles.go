// Package api provides HTTP API handlers for citizen records and the AI
// insight endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/store"
)

// ProfileHandler handles IC-number profile lookups.
type ProfileHandler struct {
	store        *store.Store
	demoFallback bool
	log          *zap.Logger
}

// NewProfileHandler creates a ProfileHandler. With demoFallback set,
// unknown IC numbers return a substitute profile labeled as such instead
// of a 404.
func NewProfileHandler(s *store.Store, demoFallback bool, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{store: s, demoFallback: demoFallback, log: log}
}

type lookupRequest struct {
	IDNumber string `json:"id_number"`
}

type lookupResponse struct {
	Success  bool           `json:"success"`
	Profile  *store.Profile `json:"profile"`
	Fallback bool           `json:"fallback,omitempty"`
}

// ServeHTTP handles POST /api/lookup-id.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	idNumber := strings.ToUpper(strings.TrimSpace(req.IDNumber))
	if idNumber == "" {
		writeError(w, http.StatusBadRequest, "ID number is required")
		return
	}

	profile, err := h.store.Profiles().GetByIC(idNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if !h.demoFallback {
				writeError(w, http.StatusNotFound, "Profile not found")
				return
			}

			h.log.Warn("unknown IC number, serving fallback profile", zap.String("ic", idNumber))
			fallback, fbErr := h.fallbackProfile()
			if fbErr != nil {
				writeError(w, http.StatusInternalServerError, "Failed to look up profile")
				return
			}
			writeJSON(w, http.StatusOK, lookupResponse{Success: true, Profile: fallback, Fallback: true})
			return
		}

		h.log.Error("profile lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to look up profile")
		return
	}

	h.log.Info("profile found",
		zap.String("name", profile.Name),
		zap.String("disability_level", profile.DisabilityLevel))

	writeJSON(w, http.StatusOK, lookupResponse{Success: true, Profile: profile})
}

// fallbackProfile returns the first seeded profile. The demo keeps running
// with any scanned card; the response labels the substitution.
func (h *ProfileHandler) fallbackProfile() (*store.Profile, error) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, store.ErrNotFound
	}
	return profiles[0], nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
