package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"datacleanr/internal/infrastructure"
	"datacleanr/pkg/contracts/events"
)

const (
	defaultPongWait   = 60 * time.Second
	broadcastCapacity = 256
)

// Options tunes the keepalive of client connections. Zero values take the
// defaults; PingPeriod must stay below PongWait.
type Options struct {
	PingPeriod time.Duration
	PongWait   time.Duration
}

// Hub maintains the set of active clients and broadcasts session events
// to them
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	pingPeriod time.Duration
	pongWait   time.Duration

	logger *slog.Logger

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// NewHub creates a new Hub. Call Start before serving connections.
func NewHub(opts Options, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaultPongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastCapacity),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		pingPeriod: opts.PingPeriod,
		pongWait:   opts.PongWait,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		h.started.Store(true)
		go h.run()
	})
}

// Stop disconnects every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
	if h.started.Load() {
		<-h.done
	}
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shut down",
				slog.Int64("total_connections", h.totalConnections.Load()),
				slog.Int64("messages_sent", h.messagesSent.Load()),
				slog.Int64("messages_dropped", h.messagesDropped.Load()))
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.totalConnections.Add(1)

			client.logger.InfoContext(client.context(), "Client registered",
				slog.Int("total_clients", count),
				slog.String("remote_addr", client.remoteAddr))

			h.sendConnect(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			client.logger.InfoContext(client.context(), "Client unregistered",
				slog.Int("total_clients", count),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// fanOut delivers message to every client. Clients whose buffer is full
// are disconnected rather than allowed to stall the others.
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	failed := 0
	for client := range h.clients {
		select {
		case client.send <- message:
			h.messagesSent.Add(1)
		default:
			failed++
			close(client.send)
			delete(h.clients, client)
			client.logger.WarnContext(client.context(), "Client send buffer full, disconnecting")
		}
	}

	if failed > 0 {
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.Int("fail_count", failed))
	}
}

func (h *Hub) sendConnect(client *Client) {
	event := events.NewEvent(events.MessageTypeConnect, "", map[string]string{
		"status":    "connected",
		"message":   "Connected to DataCleanr",
		"client_id": client.id,
	})
	event.TraceID = client.traceID

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		client.logger.Warn("Failed to send connection message - client buffer full")
	}
}

// Register adds a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Publish broadcasts a session event. It never blocks the caller: when the
// broadcast queue is full the event is dropped.
func (h *Hub) Publish(ctx context.Context, event events.Event) {
	if event.TraceID == "" {
		event.TraceID = infrastructure.GetTraceID(ctx)
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.Type)))
		return
	}

	select {
	case h.broadcast <- data:
		h.logger.DebugContext(ctx, "Event queued",
			slog.String("event_type", string(event.Type)),
			slog.String("file_id", event.FileID))
	default:
		h.messagesDropped.Add(1)
		h.logger.WarnContext(ctx, "Broadcast queue full, dropping event",
			slog.String("event_type", string(event.Type)),
			slog.String("file_id", event.FileID))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":    h.ClientCount(),
		"total_connections": h.totalConnections.Load(),
		"messages_sent":     h.messagesSent.Load(),
		"messages_dropped":  h.messagesDropped.Load(),
	}
}
