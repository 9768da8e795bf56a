package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go-inventory-stock/internal/model"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event is a change notification for one table of one branch.
type Event struct {
	Type     string         `json:"type"`
	Action   string         `json:"action"`
	Table    string         `json:"table"`
	BranchID model.ID       `json:"branch_id"`
	Data     map[string]any `json:"data,omitempty"`
	User     map[string]any `json:"user,omitempty"`
	Message  string         `json:"message,omitempty"`
}

const (
	TableProducts     = "products"
	TableTransactions = "stock_transactions"
)

type subscription struct {
	conn   Conn
	branch model.ID
}

type Hub struct {
	clients    map[Conn]model.ID
	listeners  map[int]chan Event
	nextID     int
	register   chan subscription
	unregister chan Conn
	broadcast  chan Event
	done       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger

	publishTimeout time.Duration
	dropped        atomic.Int64
}

// PublishTimeout is how long Publish waits for room in a full broadcast queue
// before the event is dropped.
const PublishTimeout = 250 * time.Millisecond

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[Conn]model.ID),
		listeners:  make(map[int]chan Event),
		register:   make(chan subscription),
		unregister: make(chan Conn),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
		log:        log,

		publishTimeout: PublishTimeout,
	}
}

// Register attaches a websocket client to the events of one branch.
func (h *Hub) Register(conn Conn, branch model.ID) {
	select {
	case h.register <- subscription{conn: conn, branch: branch}:
	case <-h.done:
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish queues an event in order. With the queue full it waits up to the publish
// timeout, then drops the event with a warning; clients refetch on their next change.
func (h *Hub) Publish(ev Event) {
	if ev.Type == "" {
		ev.Type = "stock_update"
	}
	select {
	case h.broadcast <- ev:
		return
	case <-h.done:
		return
	default:
	}

	timer := time.NewTimer(h.publishTimeout)
	defer timer.Stop()
	select {
	case h.broadcast <- ev:
	case <-h.done:
	case <-timer.C:
		h.dropped.Add(1)
		h.log.Warn("ws broadcast queue full, event dropped",
			zap.String("table", ev.Table),
			zap.String("action", ev.Action),
			zap.String("branch_id", ev.BranchID.String()))
	}
}

// Subscribe returns an in-process feed of every event. Slow subscribers miss events
// rather than stalling the hub; cancel releases the feed.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	h.mutex.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = ch
	h.mutex.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mutex.Lock()
			delete(h.listeners, id)
			h.mutex.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case sub := <-h.register:
			h.mutex.Lock()
			h.clients[sub.conn] = sub.branch
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("branch_id", sub.branch.String()))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws event marshal failed", zap.Error(err))
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, branch := range h.clients {
		if branch != ev.BranchID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}

	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			h.log.Warn("ws listener lagging, event dropped", zap.String("action", ev.Action))
		}
	}
}
