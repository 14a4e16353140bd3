package insight

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// transcriptionLanguage is the spoken language expected at the counter.
const transcriptionLanguage = "ms"

// AudioClient is the speech-recognition surface the transcriber needs.
// Unlike ChatClient there is no rule-based fallback; speech recognition
// requires a configured model.
type AudioClient interface {
	Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error)
}

type openAIAudio struct {
	client *openai.Client
}

// NewOpenAIAudio creates an AudioClient backed by the OpenAI Whisper API.
func NewOpenAIAudio(apiKey string) AudioClient {
	return &openAIAudio{client: openai.NewClient(apiKey)}
}

func (a *openAIAudio) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}

// Transcription is the result of converting one audio clip to text.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcriber converts spoken Malay audio clips to text so officers can
// reply to citizens through the demo frontend.
type Transcriber struct {
	audio AudioClient
	log   *zap.Logger
}

// NewTranscriber creates a Transcriber. A nil audio client leaves speech
// recognition unconfigured; Transcribe then returns an error.
func NewTranscriber(audio AudioClient, log *zap.Logger) *Transcriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transcriber{audio: audio, log: log}
}

// Transcribe converts one uploaded audio clip to text. Browser recordings
// arrive without an extension on some platforms; those default to webm.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio []byte) (*Transcription, error) {
	if t.audio == nil {
		return nil, fmt.Errorf("speech recognition not configured")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio clip")
	}

	if filename == "" || !strings.Contains(filename, ".") {
		filename = "clip.webm"
	}

	t.log.Info("transcribing audio", zap.String("filename", filename), zap.Int("bytes", len(audio)))

	text, err := t.audio.Transcribe(ctx, filename, audio, transcriptionLanguage)
	if err != nil {
		return nil, err
	}

	return &Transcription{Text: strings.TrimSpace(text), Language: transcriptionLanguage}, nil
}
