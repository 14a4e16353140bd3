package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadhir/smartsign/internal/insight"
)

type stubAudio struct {
	text string
}

func (s *stubAudio) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	return s.text, nil
}

func TestHandleSpeechToText(t *testing.T) {
	srv := New(Config{
		Detection:   &fakeDetection{},
		Transcriber: insight.NewTranscriber(&stubAudio{text: "Saya perlukan bantuan"}, nil),
	})

	body, contentType := multipartUpload(t, "audio", []byte("opus-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Text != "Saya perlukan bantuan" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Language != "ms" {
		t.Errorf("expected Malay, got %q", resp.Language)
	}
}

func TestHandleSpeechToText_MissingAudio(t *testing.T) {
	srv := New(Config{
		Detection:   &fakeDetection{},
		Transcriber: insight.NewTranscriber(&stubAudio{}, nil),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", bytes.NewBufferString("no multipart"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing audio, got %d", rec.Code)
	}
}

func TestHandleSpeechToText_NotConfigured(t *testing.T) {
	srv := newTestServer(&fakeDetection{})

	body, contentType := multipartUpload(t, "audio", []byte("opus-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 without a transcriber, got %d", rec.Code)
	}
}

func TestHandleAvatarVideo(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "avatar.mp4")
	if err := os.WriteFile(videoPath, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write video file: %v", err)
	}

	srv := New(Config{AvatarVideoPath: videoPath})

	req := httptest.NewRequest(http.MethodGet, "/video/bim-avatar", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("expected video/mp4, got %q", got)
	}
	if rec.Body.String() != "mp4-bytes" {
		t.Error("unexpected video body")
	}
}

func TestHandleAvatarVideo_Missing(t *testing.T) {
	srv := New(Config{AvatarVideoPath: filepath.Join(t.TempDir(), "absent.mp4")})

	req := httptest.NewRequest(http.MethodGet, "/video/bim-avatar", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing video file, got %d", rec.Code)
	}
}
