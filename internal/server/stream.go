package server

import (
	"fmt"
	"net/http"
)

// StreamHandler serves the preview frames as MJPEG.
type StreamHandler struct {
	preview Previewer
}

// NewStreamHandler creates a new StreamHandler over the given preview.
func NewStreamHandler(p Previewer) *StreamHandler {
	return &StreamHandler{preview: p}
}

// ServeHTTP streams one JPEG part per published preview until the client
// goes away or the preview stops.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	updates, cancel := h.preview.Watch()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	write := func() {
		img := h.preview.LatestFrame()
		if len(img) == 0 {
			return
		}
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(img))
		w.Write(img)
		fmt.Fprintf(w, "\r\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	write()
	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			write()
		}
	}
}
