package http

import (
	"time"

	"volunteer-hub/internal/shared/httputil"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/shared/utils"
	"volunteer-hub/internal/volunteer/adapter/realtime"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	localFeedEmail = "feed_email"

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// FeedHandler streams application events to the organization of the
// verified session over a WebSocket.
type FeedHandler struct {
	hub *realtime.Hub
	log logger.Logger
}

// NewFeedHandler creates the WebSocket handler on top of hub.
func NewFeedHandler(hub *realtime.Hub, log logger.Logger) *FeedHandler {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &FeedHandler{hub: hub, log: log.WithComponent("feed_ws")}
}

// RegisterRoutes registers GET /ws/applications behind protect.
func (h *FeedHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Get("/ws/applications", protect, h.upgrade, websocket.New(h.serve))
}

// upgrade rejects plain HTTP requests and hands the verified email to the
// connection.
func (h *FeedHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	email, err := utils.GetUserEmailFromContext(c.UserContext())
	if err != nil || email == "" {
		return httputil.Message(c, fiber.StatusUnauthorized, "Unauthorized access")
	}
	c.Locals(localFeedEmail, email)
	return c.Next()
}

func (h *FeedHandler) serve(conn *websocket.Conn) {
	email, _ := conn.Locals(localFeedEmail).(string)
	id, messages := h.hub.Subscribe(email)
	defer h.hub.Unsubscribe(id)

	h.log.Infof("Feed %s opened for %s", id, email)

	// The reader only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.log.Debugf("Feed %s closed by client", id)
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warnf("Feed %s write failed: %v", id, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
