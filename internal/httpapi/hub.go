package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JustinWhittecar/kobayashi/internal/optimizer"
)

// progressFrame is the JSON envelope pushed to /ws/optimize/jobs/{id}
// subscribers, one per polled tick of a running job.
type progressFrame struct {
	JobID string             `json:"job_id"`
	State optimizer.JobState `json:"state"`
	Done  int64              `json:"done"`
	Total int64              `json:"total"`
}

// client is one browser tab subscribed to a single job's progress,
// grounded on EverforgeWorks-Galaxies-Server/internal/api/hub.go's Client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// jobHub fans one job's progress frames out to every subscriber watching
// it, adapted from Everforge's single global Hub into a per-job registry
// since KOBAYASHI broadcasts scoped job progress, not one shared feed.
type jobHub struct {
	mu       sync.Mutex
	watchers map[string]map[*client]bool
}

func newJobHub() *jobHub {
	return &jobHub{watchers: make(map[string]map[*client]bool)}
}

func (h *jobHub) register(jobID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[jobID] == nil {
		h.watchers[jobID] = make(map[*client]bool)
	}
	h.watchers[jobID][c] = true
}

func (h *jobHub) unregister(jobID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.watchers[jobID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.watchers, jobID)
		}
	}
}

// broadcast pushes frame to every subscriber of jobID, dropping any client
// whose send buffer is full rather than blocking the caller — the same
// disconnect-on-backpressure policy Everforge's Hub.Run applies.
func (h *jobHub) broadcast(jobID string, frame progressFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.watchers[jobID] {
		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(h.watchers[jobID], c)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveJobProgress upgrades GET /ws/optimize/jobs/{id} to a WebSocket and
// streams progressFrame JSON until the job reaches a terminal state or the
// client disconnects.
func (s *Server) serveJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, ok := s.jobs.get(jobID)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[httpapi] ws upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.hub.register(jobID, c)

	stop := make(chan struct{})
	go pollJobProgress(s.hub, jobID, job, stop)
	go writePump(conn, c)
	readPump(conn, func() {
		close(stop)
		s.hub.unregister(jobID, c)
	})
}

// pollJobProgress broadcasts the job's status at a fixed cadence until it
// reaches a terminal state or stop fires, the polling equivalent of
// pushing status changes since Job exposes no completion channel of its
// own.
func pollJobProgress(hub *jobHub, jobID string, job *optimizer.Job, stop <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			status := job.Status()
			hub.broadcast(jobID, progressFrame{JobID: jobID, State: status.State, Done: status.Done, Total: status.Total})
			switch status.State {
			case optimizer.JobDone, optimizer.JobError, optimizer.JobCancelled:
				return
			}
		}
	}
}

// writePump drains c.send to the socket until the hub closes it, mirroring
// EverforgeWorks-Galaxies-Server/internal/api/hub.go's writePump.
func writePump(conn *websocket.Conn, c *client) {
	defer conn.Close()
	for payload := range c.send {
		w, err := conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(payload)
		if err := w.Close(); err != nil {
			return
		}
	}
}

// readPump is push-only from the server's side, but still pumps incoming
// frames so a client-initiated close is detected and onClose runs,
// mirroring the teacher's readPump/hub.unregister coupling.
func readPump(conn *websocket.Conn, onClose func()) {
	defer func() {
		onClose()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[httpapi] ws read: %v", err)
			}
			return
		}
	}
}
