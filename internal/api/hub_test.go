package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/everforgeworks/zen-fisher/internal/game"
	"github.com/gorilla/websocket"
)

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < publishBacklog*2; i++ {
			hub.Publish("ana", game.Event{Kind: game.EventIncome, Amount: 1})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestServeWsRequiresPlayer(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"/ws", "/ws?player=%20%20", "/ws?player=" + strings.Repeat("x", 65)} {
		rec := httptest.NewRecorder()
		ServeWs(NewHub(), rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestServeWsTrimsPlayer(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?player=%20ana%20", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go publishUntil(stop, hub, "ana")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("socket for %q missed ana's event: %v", " ana ", err)
	}
}

// publishUntil keeps publishing to a player until stop is closed, since
// socket registration is asynchronous.
func publishUntil(stop <-chan struct{}, hub *Hub, playerID string) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			hub.Publish(playerID, game.Event{Kind: game.EventWeather, Weather: game.WeatherRain})
		}
	}
}

func TestEventsReachOnlyTheirPlayer(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer ts.Close()
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?player="

	ana, _, err := websocket.DefaultDialer.Dial(base+"ana", nil)
	if err != nil {
		t.Fatalf("dial ana: %v", err)
	}
	defer ana.Close()
	bob, _, err := websocket.DefaultDialer.Dial(base+"bob", nil)
	if err != nil {
		t.Fatalf("dial bob: %v", err)
	}
	defer bob.Close()

	stop := make(chan struct{})
	defer close(stop)
	go publishUntil(stop, hub, "ana")

	_ = ana.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ana.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type    string     `json:"type"`
		Payload game.Event `json:"payload"`
		Sender  string     `json:"sender"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "weather" || msg.Sender != "ana" || msg.Payload.Weather != game.WeatherRain {
		t.Fatalf("message = %+v", msg)
	}

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Fatal("bob received ana's event")
	}
}
