package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Subscribe messages are tiny.
	maxMessageSize = 4 * 1024
)

// Subscriber is one listing view connected over WebSocket. It holds the
// last descriptor it asked for; the hub re-plans that descriptor on every
// store change.
type Subscriber struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte

	mu            sync.RWMutex
	descriptor    service.ListingDescriptor
	hasDescriptor bool
}

func NewSubscriber(hub *Hub, conn *websocket.Conn, userID string) *Subscriber {
	return &Subscriber{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 16),
	}
}

func (s *Subscriber) setDescriptor(descriptor service.ListingDescriptor) {
	s.mu.Lock()
	s.descriptor = descriptor
	s.hasDescriptor = true
	s.mu.Unlock()
}

func (s *Subscriber) currentDescriptor() (service.ListingDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.descriptor, s.hasDescriptor
}

// trySend drops the message if the subscriber's buffer is full. A slow
// reader misses intermediate pages but always gets the next one.
func (s *Subscriber) trySend(payload []byte) {
	if payload == nil {
		return
	}
	select {
	case s.Send <- payload:
	default:
	}
}

// ReadPump reads subscribe messages until the connection drops.
func (s *Subscriber) ReadPump() {
	defer func() {
		s.Hub.Unregister(s)
		s.Conn.Close()
	}()

	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Feed read error", err, map[string]interface{}{
					"user_id": s.UserID,
				})
			}
			break
		}

		s.Hub.HandleWatch(s, message)
	}
}

// WritePump pushes pages to the client and keeps the connection alive.
func (s *Subscriber) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write feed message", err, map[string]interface{}{
					"user_id": s.UserID,
				})
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
