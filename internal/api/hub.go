/*
Package api
File: hub.go
Description:
    The WebSocket Hub fans simulation events out to the sockets of the
    player they belong to.

    Architecture:
    - Hub: one per server; its Run loop owns the client registry.
    - Client: one browser connection, bound to a player id.
    - ServeWs: upgrades GET /ws?player=<id> to a WebSocket.

    Publish never blocks. It is called from session goroutines, and a slow
    or stuck browser must not stall a player's simulation.
*/

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/everforgeworks/zen-fisher/internal/game"
	"github.com/everforgeworks/zen-fisher/internal/session"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 256
	publishBacklog = 1024
)

// Message is the JSON envelope for everything sent over the socket.
type Message struct {
	Type    string      `json:"type"`    // Event kind, e.g. "catch", "transition"
	Payload interface{} `json:"payload"` // The event itself
	Sender  string      `json:"sender"`  // Player the event belongs to
}

// Client is a single connected browser tab.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID string
	send     chan []byte
}

type delivery struct {
	playerID string
	data     []byte
}

// Hub maintains the set of active clients grouped by player.
type Hub struct {
	clients    map[string]map[*Client]bool
	deliveries chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		deliveries: make(chan delivery, publishBacklog),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish queues an event for the player's sockets. Events are dropped
// when the hub is backed up.
func (h *Hub) Publish(playerID string, e game.Event) {
	data, err := json.Marshal(Message{Type: string(e.Kind), Payload: e, Sender: playerID})
	if err != nil {
		log.Printf("WS: encode %s event: %v", e.Kind, err)
		return
	}
	select {
	case h.deliveries <- delivery{playerID: playerID, data: data}:
	default:
		log.Printf("WS: backlog full, dropped %s event for %s", e.Kind, playerID)
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			set, ok := h.clients[client.playerID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.playerID] = set
			}
			set[client] = true
			log.Printf("WS: %s connected (%d sockets)", client.playerID, len(set))

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliveries:
			for client := range h.clients[d.playerID] {
				select {
				case client.send <- d.data:
				default:
					// Buffer full: the client is hung or gone.
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.playerID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.playerID)
	}
}

// upgrader allows any origin; the desktop and web clients are served from
// other hosts.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and streams the player's events to it.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	playerID, err := session.PlayerID(r.URL.Query().Get("player"))
	if err != nil {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS Upgrade Error:", err)
		return
	}

	client := &Client{hub: hub, conn: conn, playerID: playerID, send: make(chan []byte, clientBuffer)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the socket closing. Player actions go through
// the REST endpoints.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS Error: %v", err)
			}
			return
		}
	}
}

// writePump writes queued messages until the hub closes the channel.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
