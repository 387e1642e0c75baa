package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newProgressTestServer(t *testing.T) (*ProgressServer, *httptest.Server) {
	t.Helper()
	ps := NewProgressServer()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/crack/{jobID}", ps.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return ps, srv
}

func dialProgress(t *testing.T, srv *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/crack/" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestProgressServer_ProgressSinkPublishesToSubscriber(t *testing.T) {
	ps, srv := newProgressTestServer(t)
	conn := dialProgress(t, srv, "job-1")

	sink := ps.ProgressSink("job-1")

	// allow the registration goroutine to land before publishing
	time.Sleep(20 * time.Millisecond)
	sink(150, 2*time.Second)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var msg ProgressMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "progress" || msg.Attempts != 150 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Rate != 75 {
		t.Fatalf("expected rate 75, got %v", msg.Rate)
	}
}

func TestProgressServer_NotifyFoundClosesSocket(t *testing.T) {
	ps, srv := newProgressTestServer(t)
	conn := dialProgress(t, srv, "job-2")
	time.Sleep(20 * time.Millisecond)

	ps.NotifyFound("job-2", "hunter22")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var msg ProgressMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "found" || msg.Password == nil || *msg.Password != "hunter22" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	ps.mu.Lock()
	_, stillRegistered := ps.sockets["job-2"]
	ps.mu.Unlock()
	if stillRegistered {
		t.Fatal("expected job-2 sockets to be cleared after NotifyFound")
	}
}

func TestProgressServer_MissingJobIDRejected(t *testing.T) {
	_, srv := newProgressTestServer(t)
	resp, err := http.Get(srv.URL + "/ws/crack/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 404 or 400 for empty job id, got %d", resp.StatusCode)
	}
}
