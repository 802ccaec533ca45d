package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const RequestIDHeader = "X-Request-Id"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError keeps the body to {"error": ...} and reports the request id in a header.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		w.Header().Set(RequestIDHeader, reqID)
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   msg,
		Details: details,
	})
}
