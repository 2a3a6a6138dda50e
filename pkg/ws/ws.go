// Package ws provides the server side of the push channel using
// gorilla/websocket.
//
// Connections are grouped into rooms keyed by company id, so a new-order
// event reaches only the company it belongs to:
//
//	var OrderRooms = ws.NewRooms()
//	func init() { go OrderRooms.Run() }
//
//	// In the route handler:
//	ws.Upgrade(w, r, OrderRooms, companyID)
//
//	// Publish from anywhere:
//	OrderRooms.Publish(companyID, payload)
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vperfumes/tracker/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64 KB; push frames are single orders
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client represents a single connected subscriber.
type Client struct {
	rooms *Rooms
	key   string
	conn  *websocket.Conn
	send  chan []byte
}

// readPump drains inbound frames (subscribers never send anything
// meaningful) and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		c.rooms.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
	}
}

// writePump pumps room messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Rooms ────────────────────────────────────────────────────────────────────

type publication struct {
	key  string
	data []byte
}

// Rooms maintains the active subscribers grouped by key and routes
// publications to the matching room only.
type Rooms struct {
	clients    map[string]map[*Client]bool
	publish    chan publication
	register   chan *Client
	unregister chan *Client
	count      chan chan int
}

// NewRooms creates a Rooms set. Call Run in a goroutine at startup.
func NewRooms() *Rooms {
	return &Rooms{
		clients:    make(map[string]map[*Client]bool),
		publish:    make(chan publication, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
	}
}

// Run starts the room event loop. Must run in its own goroutine.
func (r *Rooms) Run() {
	for {
		select {
		case client := <-r.register:
			room := r.clients[client.key]
			if room == nil {
				room = make(map[*Client]bool)
				r.clients[client.key] = room
			}
			room[client] = true
			logger.Info("ws: client connected", "room", client.key, "in_room", len(room))

		case client := <-r.unregister:
			if room, ok := r.clients[client.key]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(r.clients, client.key)
					}
					logger.Info("ws: client disconnected", "room", client.key)
				}
			}

		case pub := <-r.publish:
			for client := range r.clients[pub.key] {
				select {
				case client.send <- pub.data:
				default:
					close(client.send)
					delete(r.clients[pub.key], client)
				}
			}

		case reply := <-r.count:
			n := 0
			for _, room := range r.clients {
				n += len(room)
			}
			reply <- n
		}
	}
}

// Publish sends data to every subscriber in the room for key.
func (r *Rooms) Publish(key string, data []byte) {
	r.publish <- publication{key: key, data: data}
}

// ClientCount returns the number of connected subscribers across all rooms.
func (r *Rooms) ClientCount() int {
	reply := make(chan int)
	r.count <- reply
	return <-reply
}

// ─── Upgrade ──────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a WebSocket and subscribes the
// resulting client to the room for key.
func Upgrade(w http.ResponseWriter, req *http.Request, rooms *Rooms, key string) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{rooms: rooms, key: key, conn: conn, send: make(chan []byte, 256)}
	rooms.register <- client
	go client.writePump()
	go client.readPump()
}
