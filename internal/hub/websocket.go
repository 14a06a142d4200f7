package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	log "github.com/sirupsen/logrus"
)

// ServeWS streams events over a WebSocket as JSON text frames. Messages from
// the client are ignored; reading only detects the close handshake.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	client, err := h.Attach(r.Context(), "websocket")
	if err != nil {
		log.WithError(err).Warn("WebSocket subscribe failed")
		conn.Close(websocket.StatusTryAgainLater, "live channel unavailable")
		return
	}
	defer h.Detach(client)

	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.cfg.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Events():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "disconnected by server")
				return
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
