package handler

import (
	"encoding/json"
	"net/http"
)

// setHeaders writes the header set carried by every response.
func setHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// response is what a method handler produces. A nil body writes no body.
type response struct {
	status int
	body   any
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if v != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.Encode(v)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if he, ok := classify(err); ok {
		writeJSON(w, he.Status, map[string]string{"error": he.Message})
		return
	}
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal Server Error",
		"details": err.Error(),
	})
}
