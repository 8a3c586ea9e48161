package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
)

type errorResponse struct {
	Error  string            `json:"error" example:"Invalid OTP"`
	Fields map[string]string `json:"fields,omitempty"`
}

type successResponse struct {
	Message string `json:"message" example:"OTP sent successfully"`
	Data    any    `json:"data,omitempty" swaggertype:"object"`
}

// Message is a response that only carries a message.
type Message string

func (m Message) Message() string { return string(m) }

// Data returns nothing so the envelope omits "data".
func (Message) Data() any { return nil }

type messager interface{ Message() string }

type payloader interface{ Data() any }

type statusCoder interface{ StatusCode() int }

func encodeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Error: gerr.Msg()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Fields = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

// encodeSuccess renders {"message", "data"}. A response implementing
// Data() controls the data field; any other value becomes the data itself.
func encodeSuccess(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		code = sc.StatusCode()
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	out := successResponse{Message: "Request processed successfully", Data: resp}
	if m, ok := resp.(messager); ok {
		out.Message = m.Message()
	}
	if p, ok := resp.(payloader); ok {
		out.Data = p.Data()
	}

	writeJSON(w, out, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: failed to encode response", "error", err)
	}
}
