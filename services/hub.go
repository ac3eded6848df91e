package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// BattleEvent is pushed to every connected spectator when a battle
// resolves.
type BattleEvent struct {
	Type        string    `json:"type"`
	Winner      string    `json:"winner"`
	Loser       string    `json:"loser"`
	WinnerScore float64   `json:"winner_score"`
	LoserScore  float64   `json:"loser_score"`
	FoughtAt    time.Time `json:"fought_at"`
}

// Hub fans battle events out to websocket spectators. One room: every
// client sees every battle.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("spectator connected", "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("spectator disconnected", "total", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast queues a battle event for every connected spectator.
func (h *Hub) Broadcast(event BattleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshalling battle event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("battle event dropped, broadcast buffer full")
	}
}

// RegisterClient attaches a websocket connection to the hub and starts its
// read/write pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 8),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.socket.Close()
	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump drains the connection so pings and close frames are handled;
// spectators never send meaningful payloads.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}
