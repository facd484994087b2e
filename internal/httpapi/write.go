package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"subclash/internal/clash"
)

func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func WriteError(w http.ResponseWriter, status int, e AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// WriteYAML sends a generated document as a download named after mode.
func WriteYAML(w http.ResponseWriter, mode clash.Mode, maxAge int, body []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/x-yaml; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="clash-%s.yaml"`, mode))
	h.Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
