package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// PayoutEvent is pushed to connected admin dashboards whenever a payout
// request is created or transitioned, feeding the live payout queue.
type PayoutEvent struct {
	Type      string    `json:"type"` // payout.created, payout.accepted, payout.rejected
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	At        time.Time `json:"at"`
}

var (
	clients   = make(map[*websocket.Conn]struct{})
	clientsMu sync.RWMutex

	Register   = make(chan *websocket.Conn)
	Unregister = make(chan *websocket.Conn)
	events     = make(chan PayoutEvent, 64)
)

// Publish queues an event for broadcast without blocking the caller. Events
// are dropped when the buffer is full; the dashboard re-syncs on next poll.
func Publish(event PayoutEvent) {
	select {
	case events <- event:
	default:
		log.Println("payout event buffer full, dropping event")
	}
}

func RunHub() {
	for {
		select {
		case conn := <-Register:
			clientsMu.Lock()
			clients[conn] = struct{}{}
			clientsMu.Unlock()
		case conn := <-Unregister:
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
		case event := <-events:
			clientsMu.RLock()
			var dead []*websocket.Conn
			for conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("failed to push payout event: %v", err)
					dead = append(dead, conn)
				}
			}
			clientsMu.RUnlock()
			if len(dead) > 0 {
				clientsMu.Lock()
				for _, conn := range dead {
					conn.Close()
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Serve keeps a dashboard connection registered until it disconnects.
func Serve(conn *websocket.Conn) {
	Register <- conn
	defer func() {
		Unregister <- conn
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
