package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PreviewHandler relays preview results (face, stillness, busy state) to a
// WebSocket client as JSON text messages.
type PreviewHandler struct {
	preview Previewer
	log     logrus.FieldLogger
}

// NewPreviewHandler creates a new PreviewHandler.
func NewPreviewHandler(p Previewer, log logrus.FieldLogger) *PreviewHandler {
	return &PreviewHandler{preview: p, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.preview.Watch()
	defer cancel()

	// The client only sends control frames; a read error means it left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case p, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "preview stopped"),
					time.Now().Add(writeWait))
				return
			}
			p.Busy = h.preview.LatestPreview().Busy
			msg, err := json.Marshal(p)
			if err != nil {
				h.log.WithError(err).Warn("encode preview")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
