package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("room"))
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, room string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(room) != n {
		if time.Now().After(deadline) {
			t.Fatalf("room %s has %d clients, want %d", room, hub.ClientCount(room), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcastsToRoomOnly(t *testing.T) {
	hub, srv := startHub(t)

	inRoom := dial(t, srv, GameRoom(1))
	otherRoom := dial(t, srv, GameRoom(2))
	waitForClients(t, hub, GameRoom(1), 1)
	waitForClients(t, hub, GameRoom(2), 1)

	hub.Publish(context.Background(), Message{Type: EventTeamCreated, RoomID: GameRoom(1), Payload: map[string]int{"id": 7}})

	inRoom.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := inRoom.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EventTeamCreated || got.RoomID != "game-1" {
		t.Fatalf("unexpected message: %+v", got)
	}

	otherRoom.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := otherRoom.ReadMessage(); err == nil {
		t.Fatal("client in another room should not receive the message")
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, GameRoom(3))
	waitForClients(t, hub, GameRoom(3), 1)

	conn.Close()
	waitForClients(t, hub, GameRoom(3), 0)
}

type recordingNotifier struct {
	messages []Message
}

func (r *recordingNotifier) Publish(_ context.Context, msg Message) {
	r.messages = append(r.messages, msg)
}

func TestMultiNotifier(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	MultiNotifier{a, nil, b}.Publish(context.Background(), Message{Type: EventGameUpdated, RoomID: GameRoom(4)})

	if len(a.messages) != 1 || len(b.messages) != 1 {
		t.Fatalf("expected both notifiers to receive the message, got %d and %d", len(a.messages), len(b.messages))
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(GameRoom(5), EventTeamDeleted); got != "mytournaments.game-5.team_deleted" {
		t.Fatalf("Subject() = %q", got)
	}
}
