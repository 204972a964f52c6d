package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub manages active WebSocket connections for admin planning dashboards and
// broadcasts schedule events to them. Subscribers register with a route id;
// route id 0 receives events for every route.
type Hub struct {
	routeClients map[uint]map[*websocket.Conn]bool
	broadcast    chan Event
	mu           sync.Mutex
}

// NewHub creates a Hub and starts its broadcast goroutine.
func NewHub() *Hub {
	hub := &Hub{
		routeClients: make(map[uint]map[*websocket.Conn]bool),
		broadcast:    make(chan Event, 100),
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for ev := range h.broadcast {
		h.mu.Lock()
		for routeID, clients := range h.routeClients {
			if routeID != 0 && routeID != ev.RouteID {
				continue
			}
			for conn := range clients {
				go func(c *websocket.Conn, rID uint, payload Event) {
					if err := c.WriteJSON(payload); err != nil {
						if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
							logrus.WithFields(logrus.Fields{
								"route_id": rID,
								"conn_ptr": fmt.Sprintf("%p", c),
							}).Info("Client connection closed during broadcast, unregistering.")
							h.Unregister(rID, c)
						} else {
							logrus.WithError(err).WithFields(logrus.Fields{
								"route_id": rID,
								"conn_ptr": fmt.Sprintf("%p", c),
							}).Warn("Failed to send broadcast message to client.")
						}
					}
				}(conn, routeID, ev)
			}
		}
		h.mu.Unlock()
	}
}

// Register adds a subscriber connection for the given route filter.
func (h *Hub) Register(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.routeClients[routeID]; !ok {
		h.routeClients[routeID] = make(map[*websocket.Conn]bool)
	}
	h.routeClients[routeID][conn] = true
	logrus.WithFields(logrus.Fields{
		"route_id": routeID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Client registered with schedule event hub.")
}

// Unregister removes a disconnected subscriber from the hub.
func (h *Hub) Unregister(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.routeClients[routeID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.routeClients, routeID)
		}
	}
	logrus.WithFields(logrus.Fields{
		"route_id": routeID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Client unregistered from schedule event hub.")
}

// Emit queues an event for broadcast. Events are dropped rather than blocking
// the caller when subscribers cannot keep up.
func (h *Hub) Emit(_ context.Context, ev Event) error {
	select {
	case h.broadcast <- ev:
	default:
		logrus.Warn("Schedule event broadcast channel full, dropping message.")
	}
	return nil
}
