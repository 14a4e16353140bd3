package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/insight"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Demo frontend runs on a different origin
	},
}

// DetectSocketHandler streams fast-pipeline results over a WebSocket. Each
// text frame carries a base64 image (a data-URL prefix is tolerated) and
// receives one result frame in reply.
type DetectSocketHandler struct {
	detection   DetectionService
	interpreter *insight.Interpreter
	log         *zap.Logger
}

// NewDetectSocketHandler creates a DetectSocketHandler.
func NewDetectSocketHandler(d DetectionService, interpreter *insight.Interpreter, log *zap.Logger) *DetectSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DetectSocketHandler{detection: d, interpreter: interpreter, log: log}
}

// ServeHTTP handles WebSocket upgrade requests and serves frames until the
// client disconnects.
func (h *DetectSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		imageData, err := decodeFrame(payload)
		if err != nil {
			if writeErr := conn.WriteJSON(errorResponse{Error: "Invalid base64 image"}); writeErr != nil {
				return
			}
			continue
		}

		result, err := h.detection.DetectFast(r.Context(), imageData)
		if err != nil {
			if writeErr := conn.WriteJSON(errorResponse{Error: "Could not decode image data"}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(toDetectResponse(r.Context(), result, h.interpreter)); err != nil {
			return
		}
	}
}

// decodeFrame decodes a base64 frame, stripping any data-URL prefix like
// "data:image/jpeg;base64,".
func decodeFrame(payload []byte) ([]byte, error) {
	text := string(payload)
	if idx := strings.Index(text, ","); idx != -1 && strings.HasPrefix(text, "data:") {
		text = text[idx+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(text))
}
