package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordermetrics/internal/infrastructure"
	"ordermetrics/pkg/contracts"
	"ordermetrics/pkg/contracts/domain"
	"ordermetrics/pkg/contracts/events"
)

const (
	// broadcastBuffer is the number of messages queued for fan-out
	broadcastBuffer = 256

	// sendBuffer is the number of messages queued per client
	sendBuffer = 64
)

var (
	// ErrHubStopped is returned once Run has exited
	ErrHubStopped = errors.New("websocket hub stopped")

	// ErrBroadcastQueueFull is returned when the fan-out queue has no room
	ErrBroadcastQueueFull = errors.New("websocket broadcast queue full")
)

// Hub maintains the set of active clients and broadcasts messages to them.
// Only Run mutates the client set.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled.
// Remaining clients are disconnected on return.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.InfoContext(ctx, "hub started")
	defer h.shutdown(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.add(ctx, c)
		case c := <-h.unregister:
			h.remove(ctx, c)
		case msg := <-h.broadcast:
			h.fanOut(ctx, msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister removes a client from the hub and closes its send queue
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client without blocking
func (h *Hub) Broadcast(msg []byte) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBroadcastQueueFull
	}
}

// PublishUpload broadcasts the outcome of an ingestion
func (h *Hub) PublishUpload(ctx context.Context, event domain.UploadEvent) {
	msg := events.NewUploadMessage(uuid.NewString(), infrastructure.GetTraceID(ctx), event)
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode upload event",
			slog.String("file_id", event.FileID),
			slog.String("error", err.Error()))
		return
	}

	if err := h.Broadcast(data); err != nil {
		h.logger.WarnContext(ctx, "upload event dropped",
			slog.String("type", string(msg.Type)),
			slog.String("file_id", event.FileID),
			slog.String("error", err.Error()))
		return
	}

	h.logger.DebugContext(ctx, "upload event queued",
		slog.String("type", string(msg.Type)),
		slog.String("file_id", event.FileID))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	ctx = c.context(ctx)
	infrastructure.RecordWebSocketClientChange(ctx, h.metrics, 1)
	h.logger.InfoContext(ctx, "client registered",
		slog.String("client_id", c.id),
		slog.String("remote_addr", c.remoteAddr),
		slog.Int("total_clients", count))

	data, err := json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      events.MessageTypeConnect,
			Timestamp: time.Now().UTC(),
			TraceID:   c.traceID,
		},
		Data: events.ConnectionInfo{
			ClientID: c.id,
			Version:  contracts.Version,
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode connect message", slog.String("error", err.Error()))
		return
	}

	select {
	case c.send <- data:
	default:
		h.logger.WarnContext(ctx, "connect message dropped, client buffer full",
			slog.String("client_id", c.id))
	}
}

func (h *Hub) remove(ctx context.Context, c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.removeLocked(c)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	ctx = c.context(ctx)
	infrastructure.RecordWebSocketClientChange(ctx, h.metrics, -1)
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", c.id),
		slog.Int("total_clients", count),
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
}

// fanOut delivers msg to every client. Clients whose queue is full are dropped.
func (h *Hub) fanOut(ctx context.Context, msg []byte) {
	var dropped []*Client

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.removeLocked(c)
			dropped = append(dropped, c)
		}
	}
	h.mu.Unlock()

	for _, c := range dropped {
		cctx := c.context(ctx)
		infrastructure.RecordWebSocketClientChange(cctx, h.metrics, -1)
		h.logger.WarnContext(cctx, "dropping slow client",
			slog.String("client_id", c.id),
			slog.Int("queued", len(c.send)))
	}
}

func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) shutdown(ctx context.Context) {
	close(h.done)

	h.mu.Lock()
	count := len(h.clients)
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	if count > 0 {
		infrastructure.RecordWebSocketClientChange(ctx, h.metrics, -int64(count))
	}
	h.logger.InfoContext(ctx, "hub stopped", slog.Int("disconnected_clients", count))
}
