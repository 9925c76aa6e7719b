package api

import (
	"net/http"

	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
)

// maxRecordingBytes caps an uploaded recording: 3 s at 30 fps of 478 points
// is well under 2 MiB of CBOR.
const maxRecordingBytes = 8 << 20

type evaluateRequest struct {
	Gesture string `json:"gesture" validate:"required,gesture"`
	Side    string `json:"side" validate:"side"`
}

// EvaluateHandler runs a single gesture capture outside of any session.
//
//	POST /api/evaluate              {"gesture": "eee", "side": ""}
//	POST /api/replay?gesture=wink&side=left   body: CBOR recording
type EvaluateHandler struct {
	grader Grader
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(g Grader) *EvaluateHandler {
	return &EvaluateHandler{grader: g}
}

func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/api/evaluate":
		h.evaluate(w, r)
	case "/api/replay":
		h.replay(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EvaluateHandler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.grader.Evaluate(r.Context(), scoring.ID(req.Gesture), landmark.Side(req.Side))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *EvaluateHandler) replay(w http.ResponseWriter, r *http.Request) {
	req := evaluateRequest{
		Gesture: r.URL.Query().Get("gesture"),
		Side:    r.URL.Query().Get("side"),
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "gesture and side query parameters are invalid")
		return
	}

	rec, err := landmark.ReadRecording(http.MaxBytesReader(w, r.Body, maxRecordingBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.grader.Replay(r.Context(), scoring.ID(req.Gesture), landmark.Side(req.Side), rec)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
