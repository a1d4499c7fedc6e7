package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/gorilla/websocket"
)

func TestNewWebSocketNotifier(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	defer notifier.Close()

	if notifier.ID() != "test-ws" {
		t.Errorf("Expected ID 'test-ws', got '%s'", notifier.ID())
	}

	if notifier.Type() != "websocket" {
		t.Errorf("Expected type 'websocket', got '%s'", notifier.Type())
	}
}

func TestWebSocketNotifier_GetUpgrader(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	defer notifier.Close()

	upgrader := notifier.GetUpgrader()
	if upgrader.ReadBufferSize == 0 {
		t.Error("Expected non-zero ReadBufferSize")
	}
	if upgrader.WriteBufferSize == 0 {
		t.Error("Expected non-zero WriteBufferSize")
	}
}

func TestWebSocketNotifier_Broadcast(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	defer notifier.Close()

	// Serve an endpoint that hands accepted connections to the notifier.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.GetUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		notifier.RegisterClient(conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Give the register channel a moment to be drained.
	time.Sleep(50 * time.Millisecond)

	event := remc.MoveEvent{RunID: "run-1", Steps: 10, Accepted: 3}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("Failed to notify: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var got remc.MoveEvent
	if err := json.Unmarshal(message, &got); err != nil {
		t.Fatalf("Failed to decode broadcast: %v", err)
	}
	if got.RunID != "run-1" || got.Accepted != 3 {
		t.Errorf("Expected broadcast event, got %+v", got)
	}
}

func TestWebSocketNotifier_CloseIsClean(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	if err := notifier.Close(); err != nil {
		t.Errorf("Expected no error on close, got %v", err)
	}
}

func TestWebSocketNotifier_NotifyWithoutClients(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	defer notifier.Close()

	// Broadcasting with no clients connected must not error.
	if err := notifier.Notify(context.Background(), remc.MoveEvent{RunID: "run-1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
