package api

import (
	"net/http"
	"strconv"
)

// CaptureHandler serves kept captures and their JPEG snapshots.
//
//	GET /api/captures/{id}
//	GET /api/captures/{id}/snapshots/{baseline|action|annotated}
type CaptureHandler struct {
	grader Grader
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(g Grader) *CaptureHandler {
	return &CaptureHandler{grader: g}
}

func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := splitPath(r.URL.Path, "/api/captures")
	switch {
	case len(parts) == 1:
		c, err := h.grader.Capture(parts[0])
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case len(parts) == 3 && parts[1] == "snapshots":
		img, err := h.grader.Snapshot(parts[0], parts[2])
		if err != nil {
			writeFailure(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(img)

	default:
		http.NotFound(w, r)
	}
}
