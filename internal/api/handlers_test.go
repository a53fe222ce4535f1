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
	"github.com/everforgeworks/zen-fisher/internal/session"
	"github.com/everforgeworks/zen-fisher/internal/storage"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	cat, err := game.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	sessions := session.NewManager(session.Options{
		Catalog:      cat,
		Store:        storage.NewMemory(),
		Publish:      hub.Publish,
		Seed:         1,
		Tick:         time.Hour,
		SaveInterval: time.Hour,
	})
	t.Cleanup(func() {
		_ = sessions.CloseAll()
		cancel()
	})

	srv := &Server{Sessions: sessions, Hub: hub}
	return srv, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func worldOf(t *testing.T, v session.View) game.WorldState {
	t.Helper()
	var w game.WorldState
	if err := json.Unmarshal(v.World, &w); err != nil {
		t.Fatalf("decode world: %v", err)
	}
	return w
}

func TestStateRequiresPlayer(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	if rec := do(t, h, http.MethodGet, "/api/state", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStateAndLogin(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/login?player=ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	login := decode[LoginResponse](t, rec)
	if login.OfflineEarned != 0 || login.View.Phase != game.PhaseIdle {
		t.Fatalf("login = %+v", login)
	}

	rec = do(t, h, http.MethodGet, "/api/state?player=ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	w := worldOf(t, decode[session.View](t, rec))
	if w.TutorialStep != game.TutorialIntro {
		t.Fatalf("tutorial = %d", w.TutorialStep)
	}
}

func TestActCasts(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/act?player=ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[ActResponse](t, rec)
	if resp.Outcome != game.OutcomeCast || resp.View.Phase != game.PhaseCasting {
		t.Fatalf("act = %s / %s", resp.Outcome, resp.View.Phase)
	}
	if w := worldOf(t, resp.View); w.TutorialStep != game.TutorialCast {
		t.Fatalf("tutorial = %d", w.TutorialStep)
	}
}

func TestPurchaseDeclined(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/upgrades/buy?player=ana", `{"id":"rod_speed"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestPurchaseSucceeds(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t)
	sess, err := srv.Sessions.Get(context.Background(), "ana")
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.Do(context.Background(), func(p *session.Player) error {
		p.World.Money = 100
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, http.MethodPost, "/api/bait/buy?player=ana", `{"id":"worm"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	w := worldOf(t, decode[session.View](t, rec))
	if w.Money != 50 || w.ActiveBaitID != "worm" || w.BaitInventory["worm"] != 5 {
		t.Fatalf("after purchase: money=%d bait=%q %v", w.Money, w.ActiveBaitID, w.BaitInventory)
	}

	rec = do(t, h, http.MethodPost, "/api/bait/cycle?player=ana", "")
	if w := worldOf(t, decode[session.View](t, rec)); w.ActiveBaitID != "" {
		t.Fatalf("cycled bait = %q, want none", w.ActiveBaitID)
	}
}

func TestBadBodies(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	for _, tc := range []struct{ target, body string }{
		{"/api/upgrades/buy?player=ana", "{"},
		{"/api/fish/sell?player=ana", `{"uid":""}`},
		{"/api/fish/sell?player=ana", `{"uid":"x","from":"pocket"}`},
		{"/api/fish/tank?player=ana", "nope"},
		{"/api/player/name?player=ana", `{"name":"   "}`},
		{"/api/player/name?player=ana", `{"name":"` + strings.Repeat("n", maxNameLen+1) + `"}`},
	} {
		if rec := do(t, h, http.MethodPost, tc.target, tc.body); rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s %s = %d, want 400", tc.target, tc.body, rec.Code)
		}
	}
}

func TestSellUnknownCatch(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/fish/sell?player=ana", `{"uid":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSellAndSellAll(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t)
	sess, err := srv.Sessions.Get(context.Background(), "ana")
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.Do(context.Background(), func(p *session.Player) error {
		p.World.Inventory = []game.CaughtFish{
			{UID: "a", TypeID: "minnow", Price: 4},
			{UID: "b", TypeID: "carp", Price: 30},
			{UID: "c", TypeID: "boot", Price: 9},
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, http.MethodPost, "/api/fish/sell?player=ana", `{"uid":"b"}`)
	sale := decode[SaleResponse](t, rec)
	if sale.Earned != 30 || sale.Count != 1 {
		t.Fatalf("sale = %+v", sale)
	}

	rec = do(t, h, http.MethodPost, "/api/fish/sell-all?player=ana", "")
	sale = decode[SaleResponse](t, rec)
	if sale.Earned != 13 || sale.Count != 2 {
		t.Fatalf("sell all = %+v", sale)
	}
	if w := worldOf(t, sale.View); w.Money != 43 || len(w.Inventory) != 0 {
		t.Fatalf("money=%d inventory=%d", w.Money, len(w.Inventory))
	}
}

func TestRename(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/player/name?player=ana", `{"name":"  Ana  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if w := worldOf(t, decode[session.View](t, rec)); w.PlayerName != "Ana" {
		t.Fatalf("name = %q", w.PlayerName)
	}
}

func TestUpgradeQuote(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/upgrades/quote?player=ana&id=rod_speed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	q := decode[UpgradeQuote](t, rec)
	if q.Cost != 50 || q.Level != 0 || q.Maxed || q.CanAfford {
		t.Fatalf("quote = %+v", q)
	}

	rec = do(t, h, http.MethodGet, "/api/upgrades/quote?player=ana&id=jetpack", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown upgrade status = %d, want 404", rec.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cat := decode[game.Catalog](t, rec)
	if cat.DefaultLocation != "pond" || len(cat.Species) == 0 {
		t.Fatalf("catalog = %+v", cat)
	}
}

func TestLogoutClosesSession(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t)
	if rec := do(t, h, http.MethodPost, "/api/login?player=ana", ""); rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/logout?player=ana", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", rec.Code)
	}
	if srv.Sessions.Len() != 0 {
		t.Fatalf("sessions = %d after logout", srv.Sessions.Len())
	}
	if rec := do(t, h, http.MethodPost, "/api/logout", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("logout without player = %d, want 400", rec.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/player/name?player=ana", `{"name":"Ana"}`)
	do(t, h, http.MethodPost, "/api/act?player=ana", "")

	rec := do(t, h, http.MethodPost, "/api/reset?player=ana", "")
	v := decode[session.View](t, rec)
	if v.Phase != game.PhaseIdle {
		t.Fatalf("phase = %s", v.Phase)
	}
	if w := worldOf(t, v); w.PlayerName != "Ana" || w.TutorialStep != game.TutorialIntro {
		t.Fatalf("after reset: name=%q tutorial=%d", w.PlayerName, w.TutorialStep)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)
	if rec := do(t, h, http.MethodGet, "/api/act?player=ana", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
