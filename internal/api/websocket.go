package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the REST routes only
	},
}

// Message is a WebSocket event pushed to table subscribers
type Message struct {
	Type     string      `json:"type"`
	ReportID string      `json:"reportId,omitempty"`
	TableID  string      `json:"tableId,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Message types
const (
	MessageWelcome             = "welcome"
	MessageRoundCompleted      = "roundCompleted"
	MessageSimulationCompleted = "simulationCompleted"
	MessageReportDeleted       = "reportDeleted"
	MessageTablesUpdated       = "tablesUpdated"
)

// Client is a connected WebSocket subscriber watching one table
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	tableID string
	hub     *Hub
}

// Hub tracks subscribers per table and fans simulation events out to them
type Hub struct {
	clients    map[*Client]bool
	tables     map[string]map[*Client]bool
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		tables:     make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run processes disconnects and global broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// register adds a client synchronously so it sees every event sent after
// the handshake.
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if _, exists := h.tables[client.tableID]; !exists {
		h.tables[client.tableID] = make(map[*Client]bool)
	}
	h.tables[client.tableID][client] = true
}

// remove drops a client and closes its send channel. Callers hold mu.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if subs := h.tables[client.tableID]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.tables, client.tableID)
		}
	}
}

// Subscribers returns how many clients watch a table
func (h *Hub) Subscribers(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// BroadcastToTable sends a message to every client watching tableID
func (h *Hub) BroadcastToTable(tableID string, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tables[tableID] {
		select {
		case client.send <- data:
		default:
			// Slow subscriber; the event is dropped for this client
		}
	}
}

// Broadcast queues a message for every connected client. It never blocks:
// when Run is not draining the queue the message is dropped.
func (h *Hub) Broadcast(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		log.Printf("Broadcast queue full, dropping %s message", message.Type)
	}
}

// WebSocketHandler upgrades the request and subscribes it to ?tableId=
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	if tableID == "" {
		errorResponse(w, http.StatusBadRequest, "tableId is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		tableID: tableID,
		hub:     h,
	}

	welcome, _ := json.Marshal(Message{
		Type:    MessageWelcome,
		TableID: tableID,
		Data: map[string]string{
			"message": "Connected to blackjack simulation server",
		},
	})
	client.send <- welcome
	h.register(client)

	go client.readPump()
	go client.writePump()
}

// readPump keeps the connection alive and notices disconnects. Clients do
// not send commands over the socket.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump drains the send channel onto the connection. Queued messages
// are batched into one frame separated by newlines.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
