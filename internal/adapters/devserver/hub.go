package devserver

import (
	"bufio"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/sitepipe/internal/core/domain"
)

const (
	// DefaultHeartbeat is the interval of the keep-alive comment sent to idle clients.
	DefaultHeartbeat = 30 * time.Second

	clientBuffer = 8
)

// reloadMessage is the JSON payload of a "reload" server-sent event.
type reloadMessage struct {
	Rule  string   `json:"rule"`
	Kind  string   `json:"kind"`
	Paths []string `json:"paths,omitempty"`
}

// Hub fans reload events out to connected browsers over server-sent events.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	clients   map[int]*client
	closed    bool
	heartbeat time.Duration
}

type client struct {
	ch   chan domain.ReloadEvent
	done chan struct{}
}

// NewHub returns a hub with the given heartbeat interval. A non-positive
// interval means DefaultHeartbeat.
func NewHub(heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Hub{clients: make(map[int]*client), heartbeat: heartbeat}
}

// ServeHTTP streams reload events until the client disconnects, is dropped
// or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	id, c, ok := h.subscribe()
	if !ok {
		http.Error(w, "reload hub closed", http.StatusServiceUnavailable)
		return
	}
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(": connected\n\n") {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			if !send(": ping\n\n") {
				return
			}
		case ev := <-c.ch:
			if !send(formatEvent(ev)) {
				return
			}
		}
	}
}

func formatEvent(ev domain.ReloadEvent) string {
	data, _ := json.Marshal(reloadMessage{Rule: ev.Rule, Kind: string(ev.Kind), Paths: ev.Paths})
	return "event: reload\ndata: " + string(data) + "\n\n"
}

func (h *Hub) subscribe() (int, *client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	c := &client{ch: make(chan domain.ReloadEvent, clientBuffer), done: make(chan struct{})}
	id := h.nextID
	h.nextID++
	h.clients[id] = c
	return id, c, true
}

// remove drops a client. Removing twice is harmless.
func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast queues ev for every client without blocking. A client whose
// buffer is full is disconnected; its browser reconnects on its own.
func (h *Hub) Broadcast(ev domain.ReloadEvent) (delivered, dropped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, 0
	}
	for id, c := range h.clients {
		select {
		case c.ch <- ev:
			delivered++
		default:
			delete(h.clients, id)
			close(c.done)
			dropped++
		}
	}
	return delivered, dropped
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}
