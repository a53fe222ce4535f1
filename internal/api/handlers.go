/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    Every request names its player with the ?player= query parameter. The
    handler decodes and validates the body, then runs the game operation
    on that player's session goroutine and answers with a fresh snapshot.

    Status codes:
    - 400: malformed body or missing player
    - 404: unknown catch uid on sale, unknown upgrade on quote
    - 409: the operation was declined (not enough money, tank full, ...)
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/everforgeworks/zen-fisher/internal/game"
	"github.com/everforgeworks/zen-fisher/internal/session"
)

const maxNameLen = 24

// errDeclined marks a game operation that was refused without changes.
var errDeclined = errors.New("declined")

// errNotFound marks a request for an id that does not exist.
var errNotFound = errors.New("not found")

// Request DTOs

type IDRequest struct {
	ID string `json:"id"`
}

type FishRequest struct {
	UID  string         `json:"uid"`
	From game.Container `json:"from"` // Defaults to the inventory
}

type NameRequest struct {
	Name string `json:"name"`
}

// Response DTOs

type ActResponse struct {
	Outcome game.Outcome `json:"outcome"`
	View    session.View `json:"view"`
}

type SaleResponse struct {
	Earned int64        `json:"earned"`
	Count  int          `json:"count"`
	View   session.View `json:"view"`
}

type UpgradeQuote struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	Cost      int64  `json:"cost"`
	Maxed     bool   `json:"maxed"`
	CanAfford bool   `json:"canAfford"`
}

type LoginResponse struct {
	OfflineEarned int64        `json:"offlineEarned"`
	View          session.View `json:"view"`
}

// Server wires the HTTP surface to the session manager and the hub.
type Server struct {
	Sessions *session.Manager
	Hub      *Hub
}

// Routes registers every endpoint on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Information
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/upgrades/quote", s.handleUpgradeQuote)

	// Session
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/player/name", s.handleRename)

	// Fishing
	mux.HandleFunc("POST /api/act", s.handleAct)

	// Shop
	mux.HandleFunc("POST /api/upgrades/buy", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.BuyUpgrade(w, id) }))
	mux.HandleFunc("POST /api/bait/buy", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.BuyBait(w, id) }))
	mux.HandleFunc("POST /api/bait/equip", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.EquipBait(w, id) }))
	mux.HandleFunc("POST /api/bait/cycle", s.handleCycleBait)
	mux.HandleFunc("POST /api/bobbers/buy", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.BuyBobber(w, id) }))
	mux.HandleFunc("POST /api/bobbers/equip", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.EquipBobber(w, id) }))
	mux.HandleFunc("POST /api/skins/buy", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.BuySkin(w, id) }))
	mux.HandleFunc("POST /api/skins/equip", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.EquipSkin(w, id) }))
	mux.HandleFunc("POST /api/locations/unlock", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.UnlockLocation(w, id) }))
	mux.HandleFunc("POST /api/locations/switch", s.shopAction(func(sh *game.Shop, w *game.WorldState, id string) bool { return sh.SwitchLocation(w, id) }))

	// Catches
	mux.HandleFunc("POST /api/fish/sell", s.handleSell)
	mux.HandleFunc("POST /api/fish/sell-all", s.handleSellAll)
	mux.HandleFunc("POST /api/fish/tank", s.fishAction(func(sh *game.Shop, w *game.WorldState, uid string) bool { return sh.MoveToAquarium(w, uid) }))
	mux.HandleFunc("POST /api/fish/untank", s.fishAction(func(sh *game.Shop, w *game.WorldState, uid string) bool { return sh.MoveToInventory(w, uid) }))

	// Real-time events
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.Hub, w, r)
	})

	return mux
}

// session resolves the ?player= parameter, writing the error response
// itself when it fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Sessions.Get(r.Context(), r.URL.Query().Get("player"))
	if errors.Is(err, session.ErrInvalidPlayer) {
		http.Error(w, "player is required", http.StatusBadRequest)
		return nil, false
	}
	if err != nil {
		log.Printf("API: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// run executes fn on the session and answers with its snapshot, or maps
// the error onto a status code.
func (s *Server) run(w http.ResponseWriter, r *http.Request, fn func(*session.Player) error, respond func(session.View) any) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Do(r.Context(), fn); err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if respond == nil {
		writeJSON(w, view)
		return
	}
	writeJSON(w, respond(view))
}

func (s *Server) shopAction(op func(*game.Shop, *game.WorldState, string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		s.run(w, r, func(p *session.Player) error {
			if !op(p.Shop, p.World, req.ID) {
				return errDeclined
			}
			return nil
		}, nil)
	}
}

func (s *Server) fishAction(op func(*game.Shop, *game.WorldState, string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		s.run(w, r, func(p *session.Player) error {
			if !op(p.Shop, p.World, req.UID) {
				return errDeclined
			}
			return nil
		}, nil)
	}
}

// handleCatalog returns the catalog new sessions play with.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sessions.Catalog())
}

// handleState returns the player's current snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(*session.Player) error { return nil }, nil)
}

// handleLogin opens the session and reports the offline earnings credited.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := sess.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, LoginResponse{OfflineEarned: sess.OfflineEarned(), View: view})
}

// handleLogout saves and closes the player's session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}
	if err := s.Sessions.Logout(playerID); err != nil {
		log.Printf("API: logout %s: %v", playerID, err)
		http.Error(w, "final save failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(p *session.Player) error {
		p.Reset()
		return nil
	}, nil)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > maxNameLen {
		http.Error(w, "name must be 1-24 characters", http.StatusBadRequest)
		return
	}
	s.run(w, r, func(p *session.Player) error {
		p.World.PlayerName = name
		return nil
	}, nil)
}

// handleAct is the one fishing button: cast, hook or reel depending on phase.
func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var outcome game.Outcome
	s.run(w, r, func(p *session.Player) error {
		outcome = p.Machine.Act(p.World)
		return nil
	}, func(v session.View) any {
		return ActResponse{Outcome: outcome, View: v}
	})
}

func (s *Server) handleCycleBait(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(p *session.Player) error {
		p.Shop.CycleBait(p.World)
		return nil
	}, nil)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req FishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.From == "" {
		req.From = game.ContainerInventory
	}
	if req.From != game.ContainerInventory && req.From != game.ContainerAquarium {
		http.Error(w, "from must be inventory or aquarium", http.StatusBadRequest)
		return
	}

	var earned int64
	s.run(w, r, func(p *session.Player) error {
		amount, ok := p.Shop.Sell(p.World, req.From, req.UID)
		if !ok {
			return errNotFound
		}
		earned = amount
		return nil
	}, func(v session.View) any {
		return SaleResponse{Earned: earned, Count: 1, View: v}
	})
}

func (s *Server) handleSellAll(w http.ResponseWriter, r *http.Request) {
	var earned int64
	var count int
	s.run(w, r, func(p *session.Player) error {
		earned, count = p.Shop.SellAll(p.World)
		return nil
	}, func(v session.View) any {
		return SaleResponse{Earned: earned, Count: count, View: v}
	})
}

// handleUpgradeQuote tells the UI what the next level of an upgrade costs
// without buying it.
func (s *Server) handleUpgradeQuote(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var quote UpgradeQuote
	err := sess.Do(r.Context(), func(p *session.Player) error {
		u := p.Catalog.GetUpgrade(id)
		if u == nil {
			return errNotFound
		}
		level := p.World.Level(id)
		cost, ok := game.UpgradeCost(*u, level)
		quote = UpgradeQuote{
			ID:        id,
			Level:     level,
			Cost:      cost,
			Maxed:     !ok,
			CanAfford: ok && p.World.Money >= cost,
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quote)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errDeclined):
		http.Error(w, "Declined", http.StatusConflict)
	case errors.Is(err, errNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, session.ErrClosed):
		http.Error(w, "Session closed", http.StatusGone)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
	default:
		log.Printf("API: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
