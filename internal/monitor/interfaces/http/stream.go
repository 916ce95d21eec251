package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	monitorapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/application"
	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
)

// SSEBroker fans alert lifecycle events and status snapshots out to
// connected UI clients. Each client channel carries fully framed SSE
// messages so the stream loop only writes and flushes.
type SSEBroker struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan []byte]struct{})}
}

// Notify implements AlertNotifier.
func (b *SSEBroker) Notify(_ context.Context, event monitorapp.AlertEvent) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.broadcast(frame("alert", payload))
}

// PublishSnapshot implements the poller's SnapshotPublisher. Each
// successful refresh is pushed to stream clients as a status event
// carrying the same classified statuses the REST endpoint serves.
func (b *SSEBroker) PublishSnapshot(_ context.Context, snap monitorapp.Snapshot) {
	if b == nil {
		return
	}
	resp := statusResponse{
		Statuses:  make([]classifiedStatus, 0, len(snap.Statuses)),
		FetchedAt: snap.FetchedAt,
	}
	for _, status := range snap.Statuses {
		resp.Statuses = append(resp.Statuses, classifiedStatus{
			EquipmentStatus: status,
			Info:            monitor.Classify(status.Status),
		})
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	b.broadcast(frame("status", payload))
}

func frame(event string, payload []byte) []byte {
	buf := make([]byte, 0, len(event)+len(payload)+16)
	buf = append(buf, "event: "...)
	buf = append(buf, event...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, payload...)
	buf = append(buf, "\n\n"...)
	return buf
}

// Subscribe registers a new client channel.
func (b *SSEBroker) Subscribe() chan []byte {
	if b == nil {
		return nil
	}
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client channel. The channel is never closed:
// a concurrent broadcast may still hold a reference, and the stream
// loop exits through the request context instead.
func (b *SSEBroker) Unsubscribe(ch chan []byte) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
}

// broadcast delivers a framed message to every subscriber, dropping it
// for clients whose buffer is full. Sends happen under the lock so a
// racing Unsubscribe cannot invalidate a channel mid-send.
func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// StreamHandler serves the SSE alert stream.
type StreamHandler struct {
	broker *SSEBroker
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *SSEBroker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// ServeHTTP handles GET /api/v1/alerts/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.broker.Subscribe()
	if ch == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	defer h.broker.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-ch:
			_, _ = w.Write(msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
