package web

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleWS streams engine events to the client as JSON messages until the
// client disconnects or the engine closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureIdentity(r.Context(), r.URL.Query().Get("identity")); err != nil {
		s.writeLoadError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := s.engine.Subscribe()
	defer cancel()

	// This endpoint is write-only. CloseRead drains the read side so a
	// client disconnect cancels the context instead of leaving the loop
	// blocked on a quiet engine.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "engine closed")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}
