package server

import (
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"
)

// handleSpeechToText handles POST /api/speech-to-text: Whisper
// transcription of a recorded Malay audio clip.
func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.config.Transcriber == nil {
		writeError(w, http.StatusInternalServerError, "Speech recognition not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid audio upload")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid audio upload")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil || len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "Missing or invalid audio upload")
		return
	}

	result, err := s.config.Transcriber.Transcribe(r.Context(), header.Filename, audio)
	if err != nil {
		s.log.Error("transcription failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error transcribing audio")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"text":     result.Text,
		"language": result.Language,
	})
}

// handleAvatarVideo handles GET /video/bim-avatar: the pre-rendered BIM
// avatar clip played by the frontend.
func (s *Server) handleAvatarVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := os.Stat(s.config.AvatarVideoPath); err != nil {
		writeError(w, http.StatusNotFound, "Video file not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, s.config.AvatarVideoPath)
}
