package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/hyperjump/vecshard/internal/models"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

func isMsgpack(mediaType string) bool {
	return mediaType == contentTypeMsgpack || mediaType == "application/x-msgpack" || mediaType == "application/vnd.msgpack"
}

func requestIsMsgpack(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && isMsgpack(mediaType)
}

func acceptsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && isMsgpack(mediaType) {
			return true
		}
	}
	return false
}

// decode reads the request body as msgpack or JSON depending on Content-Type.
func decode(r *http.Request, v any) error {
	if requestIsMsgpack(r) {
		return msgpack.NewDecoder(r.Body).Decode(v)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// respond encodes data before writing the status, so an encoding failure
// becomes a 500 instead of a truncated 2xx.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	contentType := contentTypeJSON
	marshal := func(v any) ([]byte, error) { return json.Marshal(v) }
	if acceptsMsgpack(r) {
		contentType = contentTypeMsgpack
		marshal = msgpack.Marshal
	}
	body, err := marshal(data)
	if err != nil {
		s.logger.Error("encode response failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = marshal(models.ErrorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	}
}
