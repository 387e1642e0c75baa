package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressMessage is one frame pushed down a job's progress socket.
type ProgressMessage struct {
	Type     string  `json:"type"` // "progress", "found", "exhausted", "error"
	Attempts uint64  `json:"attempts,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	Password *string `json:"password,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// ProgressServer streams live crack progress over per-job WebSocket
// connections, grounded on the broadcast-to-all-clients websocket manager
// but scoped per job ID instead of fanning every message out to everyone.
type ProgressServer struct {
	mu      sync.Mutex
	sockets map[string][]*websocket.Conn
}

func NewProgressServer() *ProgressServer {
	return &ProgressServer{sockets: make(map[string][]*websocket.Conn)}
}

// HandleWebSocket upgrades GET /ws/crack/{jobID} and registers the
// connection to receive that job's progress frames until it disconnects.
func (s *ProgressServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobID")
	if jobID == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}

	conn, err := progressUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("progress websocket upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.sockets[jobID] = append(s.sockets[jobID], conn)
	s.mu.Unlock()

	go func() {
		defer conn.Close()
		defer s.unregister(jobID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *ProgressServer) unregister(jobID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.sockets[jobID]
	for i, c := range conns {
		if c == conn {
			s.sockets[jobID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(s.sockets[jobID]) == 0 {
		delete(s.sockets, jobID)
	}
}

// ProgressSink returns a domain.ProgressFunc that publishes attempts/rate
// updates to every socket subscribed to jobID, suitable for passing as
// domain.CrackOptions.ProgressSink.
func (s *ProgressServer) ProgressSink(jobID string) domain.ProgressFunc {
	return func(attempts uint64, elapsed time.Duration) {
		rate := float64(0)
		if elapsed > 0 {
			rate = float64(attempts) / elapsed.Seconds()
		}
		s.publish(jobID, ProgressMessage{Type: "progress", Attempts: attempts, Rate: rate})
	}
}

// NotifyFound publishes a terminal "found" frame and closes the job's sockets.
func (s *ProgressServer) NotifyFound(jobID, password string) {
	s.publish(jobID, ProgressMessage{Type: "found", Password: &password})
	s.closeAll(jobID)
}

// NotifyExhausted publishes a terminal "exhausted" frame and closes the job's sockets.
func (s *ProgressServer) NotifyExhausted(jobID string) {
	s.publish(jobID, ProgressMessage{Type: "exhausted"})
	s.closeAll(jobID)
}

// NotifyError publishes a terminal "error" frame and closes the job's sockets.
func (s *ProgressServer) NotifyError(jobID string, err error) {
	s.publish(jobID, ProgressMessage{Type: "error", Error: err.Error()})
	s.closeAll(jobID)
}

func (s *ProgressServer) publish(jobID string, msg ProgressMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("progress marshal error:", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.sockets[jobID]
	for i := 0; i < len(conns); i++ {
		conn := conns[i]
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			conns = append(conns[:i], conns[i+1:]...)
			i--
		}
	}
	s.sockets[jobID] = conns
}

func (s *ProgressServer) closeAll(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.sockets[jobID] {
		conn.Close()
	}
	delete(s.sockets, jobID)
}
