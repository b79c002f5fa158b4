package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/WikiruKit/internal/logging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WSMessage is a reply frame on /ws. Type is "result" or "error".
type WSMessage struct {
	Type   string           `json:"type"`
	Seq    int              `json:"seq"`
	Cached bool             `json:"cached,omitempty"`
	Result *RebuildResponse `json:"result,omitempty"`
	Error  *APIError        `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.cfg.AllowedOrigins) == 0 {
				return true
			}
			return originAllowed(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// handleWebSocket runs a live rebuild session: every text frame is a
// RebuildRequest and gets exactly one WSMessage back, in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := logging.NewRunID()
	ctx := logging.WithRequestID(r.Context(), session)
	logging.WebSocketEvent("client_connected", int(s.clients.Add(1)), "session", session)
	defer func() {
		logging.WebSocketEvent("client_disconnected", int(s.clients.Add(-1)), "session", session)
	}()

	conn.SetReadLimit(maxBody)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for seq := 1; ; seq++ {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.WarnContext(ctx, "websocket closed", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		msg := WSMessage{Seq: seq}
		var req RebuildRequest
		switch {
		case kind != websocket.TextMessage:
			msg.Type = "error"
			msg.Error = &APIError{Code: "INVALID_FRAME", Message: "expected a text frame"}
		case json.Unmarshal(data, &req) != nil:
			msg.Type = "error"
			msg.Error = &APIError{Code: "INVALID_JSON", Message: "frame is not a rebuild request"}
		default:
			res, cached, err := s.rebuild(ctx, req)
			if err != nil {
				msg.Type = "error"
				msg.Error = &APIError{Code: errorCode(err), Message: err.Error()}
			} else {
				msg.Type = "result"
				msg.Result = res
				msg.Cached = cached
			}
		}
		logging.DebugContext(ctx, "websocket rebuild", "seq", seq, "type", msg.Type)

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			logging.WarnContext(ctx, "websocket write failed", "error", err)
			return
		}
	}
}
