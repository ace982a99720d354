package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duythanhle/live-beats/core/auth"
	"github.com/duythanhle/live-beats/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// WebSocketEventsHandler streams the caller's playback events over a
// websocket. It bridges the user's room channel in Redis to the connection;
// on connect the last cached event is replayed so a late joiner sees the
// current state.
//
// Browsers cannot set an Authorization header on a websocket, so the token
// comes in as a query parameter.
func (h *APIHandler) WebSocketEventsHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Token is required")
		return
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	userID := claims.UserID
	logger.Info("event feed connected",
		logger.Int64("userId", userID),
		logger.String("username", claims.Username))

	ctx := r.Context()

	// Replay the cached state so the client doesn't start blind.
	if last, err := h.notifier.LastEvent(ctx, userID); err != nil {
		logger.Warn("failed to load cached event", logger.Int64("userId", userID), logger.ErrorField(err))
	} else if last != nil {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(last); err != nil {
			logger.Warn("websocket write failed", logger.ErrorField(err))
			return
		}
	}

	pubsub := h.notifier.Subscribe(ctx, userID)
	defer pubsub.Close()

	// Drain client frames so close/ping control messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				logger.Warn("websocket write failed",
					logger.Int64("userId", userID),
					logger.ErrorField(err))
				return
			}
		case <-done:
			logger.Info("event feed disconnected", logger.Int64("userId", userID))
			return
		case <-ctx.Done():
			return
		}
	}
}
