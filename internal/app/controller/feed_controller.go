package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tagcord/tagcord-backend/internal/feed"
	"github.com/tagcord/tagcord-backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the upgrade
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FeedController struct {
	hub *feed.Hub
}

func NewFeedController(hub *feed.Hub) *FeedController {
	return &FeedController{
		hub: hub,
	}
}

// Connect upgrades to WebSocket and registers a listing subscriber. The
// client then sends subscribe messages to pick its query; every tag change
// pushes a fresh page back.
// GET /api/feed?token=
func (ctrl *FeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	subscriber := feed.NewSubscriber(ctrl.hub, conn, userID)
	ctrl.hub.Register(subscriber)

	go subscriber.WritePump()
	go subscriber.ReadPump()
}
