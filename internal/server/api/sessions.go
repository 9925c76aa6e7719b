package api

import (
	"net/http"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/landmark"
)

type captureStepRequest struct {
	Side string `json:"side" validate:"side"`
}

type captureStepResponse struct {
	Session app.SessionView `json:"session"`
	Capture *app.Capture    `json:"capture"`
}

// SessionHandler drives grading sessions through the protocol.
//
//	POST   /api/sessions                 start a session
//	GET    /api/sessions/{id}            session state and report
//	POST   /api/sessions/{id}/capture    capture the current step {"side": "left"}
//	POST   /api/sessions/{id}/next       record the pending grade and advance
//	POST   /api/sessions/{id}/retry      discard the pending grade
//	DELETE /api/sessions/{id}            cancel
type SessionHandler struct {
	grader Grader
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(g Grader) *SessionHandler {
	return &SessionHandler{grader: g}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/sessions")

	switch len(parts) {
	case 0:
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusCreated, h.grader.StartSession())

	case 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			h.respond(w)(h.grader.Session(id))
		case http.MethodDelete:
			if err := h.grader.CancelSession(id); err != nil {
				writeFailure(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case 2:
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := parts[0]
		switch parts[1] {
		case "capture":
			h.capture(w, r, id)
		case "next":
			h.respond(w)(h.grader.NextStep(id))
		case "retry":
			h.respond(w)(h.grader.RetryStep(id))
		default:
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

// respond writes a session view or the error that came with it.
func (h *SessionHandler) respond(w http.ResponseWriter) func(app.SessionView, error) {
	return func(v app.SessionView, err error) {
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (h *SessionHandler) capture(w http.ResponseWriter, r *http.Request, id string) {
	var req captureStepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, c, err := h.grader.CaptureStep(r.Context(), id, landmark.Side(req.Side))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captureStepResponse{Session: v, Capture: c})
}
