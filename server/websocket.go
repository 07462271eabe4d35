package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/dashboard"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// wsMessage is a server to client frame.
type wsMessage struct {
	Type  string          `json:"type"` // "view" or "error"
	View  *dashboard.View `json:"view,omitempty"`
	Error string          `json:"error,omitempty"`
}

// handleWebSocket renders a view for every selection the client sends.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.From(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	logger.Info("WebSocket client connected", "remote", r.RemoteAddr)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket closed unexpectedly", "error", err)
			}
			return
		}

		msg := wsMessage{Type: "view"}
		var req selectionRequest
		var sel dashboard.Selection
		if err = json.Unmarshal(data, &req); err != nil {
			err = goerr.Wrap(err, "malformed request", goerr.T(dashboard.ErrTagInvalidSelection))
		} else {
			sel, err = req.resolve(s.session)
		}
		if err == nil {
			msg.View, err = dashboard.Render(r.Context(), s.session, sel)
		}
		if err != nil {
			text, known := dashboard.UserMessage(err)
			if !known {
				logger.Error("WebSocket render failed", "error", err)
			}
			msg = wsMessage{Type: "error", Error: text}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("WebSocket write failed", "error", err)
			return
		}
	}
}
