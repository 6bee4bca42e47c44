package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var (
	ErrClientClosed = errors.New("client connection closed")
	ErrSendBuffer   = errors.New("client send buffer full")
)

// Hub owns the websocket clients and feeds their lifecycle into the presence registry.
// Registration and unregistration are serialised by Run.
type Hub struct {
	registry   *Registry
	register   chan registration
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

type registration struct {
	client *Client
	token  string
}

type Client struct {
	hub       *Hub
	id        string
	socket    *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Message is the JSON envelope of every frame in both directions.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry:   registry,
		register:   make(chan registration),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case reg := <-h.register:
			if _, err := h.registry.Connect(reg.client, reg.token); err != nil {
				log.Printf("Client %s rejected: %v", reg.client.id, err)
			}

		case client := <-h.unregister:
			h.registry.Disconnect(client.id)
			client.Close()

		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient hands a freshly upgraded connection to the hub and starts its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, token string) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	select {
	case h.register <- registration{client: client, token: token}:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

func (c *Client) ID() string {
	return c.id
}

// Emit queues a frame without blocking; a full buffer drops it.
func (c *Client) Emit(event string, payload any) error {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		log.Printf("Client %s send buffer full, dropping %s", c.id, event)
		return ErrSendBuffer
	}
}

// Close stops the write pump, which closes the socket.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Client) readPump() {
	defer c.hub.unregisterClient(c)

	c.socket.SetReadLimit(maxMessageSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		c.Emit("pong", "pong")
	default:
		log.Printf("Unknown message type %q from client %s", msg.Type, c.id)
	}
}
