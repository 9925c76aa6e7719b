package api

import (
	"net/http"

	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/sequence"
)

type protocolStep struct {
	ID    scoring.ID `json:"id"`
	Name  string     `json:"name"`
	Sided bool       `json:"sided"`
}

type protocolResponse struct {
	Steps      []protocolStep               `json:"steps"`
	MaxScore   int                          `json:"max_score"`
	Thresholds map[string]scoring.Threshold `json:"thresholds"`
}

// ProtocolHandler describes the grading protocol and the active clinical table.
//
//	GET /api/protocol
type ProtocolHandler struct {
	thresholds scoring.Thresholds
}

// NewProtocolHandler creates a new ProtocolHandler.
func NewProtocolHandler(t scoring.Thresholds) *ProtocolHandler {
	return &ProtocolHandler{thresholds: t}
}

func (h *ProtocolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	steps := sequence.Protocol()
	resp := protocolResponse{
		Steps:      make([]protocolStep, 0, len(steps)),
		MaxScore:   sequence.New(steps).MaxScore(),
		Thresholds: h.thresholds.Named(),
	}
	for _, s := range steps {
		resp.Steps = append(resp.Steps, protocolStep{ID: s.ID, Name: s.Name, Sided: s.ID.Sided()})
	}
	writeJSON(w, http.StatusOK, resp)
}
