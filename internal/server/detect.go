package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/detection"
	"github.com/nadhir/smartsign/internal/insight"
)

// maxUploadBytes bounds one image upload.
const maxUploadBytes = 10 << 20

// DetectionService is the pipeline surface the HTTP layer depends on.
type DetectionService interface {
	DetectAccurate(ctx context.Context, imageData []byte) (*detection.Result, error)
	DetectFast(ctx context.Context, imageData []byte) (*detection.Result, error)
}

// detectResponse is the JSON shape shared by both detection endpoints.
type detectResponse struct {
	Success        bool                        `json:"success"`
	Label          string                      `json:"label,omitempty"`
	Text           string                      `json:"text,omitempty"`
	Confidence     float64                     `json:"confidence"`
	ModelUsed      string                      `json:"model_used,omitempty"`
	Hand           string                      `json:"hand,omitempty"`
	BoundingBoxes  []detection.BoundingBoxInfo `json:"bounding_boxes"`
	NumHands       int                         `json:"num_hands"`
	ProcessingTime float64                     `json:"processing_time"`
	FromCache      bool                        `json:"from_cache,omitempty"`
	Message        string                      `json:"message,omitempty"`
}

// toDetectResponse converts a pipeline result, attaching the interpreted
// sentence for recognized labels.
func toDetectResponse(ctx context.Context, result *detection.Result, interpreter *insight.Interpreter) detectResponse {
	resp := detectResponse{
		Success:        result.Success,
		Label:          result.Label,
		Confidence:     result.Confidence,
		ModelUsed:      result.ModelUsed,
		Hand:           result.Hand,
		BoundingBoxes:  result.BoundingBoxes,
		NumHands:       result.NumHands,
		ProcessingTime: result.ProcessingTime.Seconds(),
		FromCache:      result.FromCache,
		Message:        result.Message,
	}

	if result.Success {
		if interpreter != nil {
			resp.Text = interpreter.Interpret(ctx, []string{result.Label})
		} else {
			resp.Text = insight.SentenceFor(result.Label)
		}
	}

	return resp
}

// readUpload extracts the image bytes from a multipart "file" field.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}

// handleDetect handles POST /api/detect: the accurate multi-hand pipeline.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	s.runDetection(w, r, s.config.Detection.DetectAccurate)
}

// handleDetectFast handles POST /api/detect/fast: the cached low-latency
// pipeline.
func (s *Server) handleDetectFast(w http.ResponseWriter, r *http.Request) {
	s.runDetection(w, r, s.config.Detection.DetectFast)
}

func (s *Server) runDetection(w http.ResponseWriter, r *http.Request, detect func(context.Context, []byte) (*detection.Result, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid file upload")
		return
	}

	result, err := detect(r.Context(), data)
	if err != nil {
		if errors.Is(err, detection.ErrImageDecode) {
			writeError(w, http.StatusBadRequest, "Could not decode image data")
			return
		}
		s.log.Error("detection failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Detection failed")
		return
	}

	writeJSON(w, http.StatusOK, toDetectResponse(r.Context(), result, s.config.Interpreter))
}
