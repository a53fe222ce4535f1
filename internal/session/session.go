/*
Package session
File: session.go
Description:
    A Session hosts one player's game. A single goroutine owns the player's
    WorldState and is the only code that touches it. It serves:

    1. The simulation ticker (state machine + environmental clock).
    2. The autosave ticker, which hands a snapshot to a background writer
       without waiting for it.
    3. An inbox of player commands, each run to completion in turn.

    Close stops both tickers and performs one final synchronous save.
*/

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/everforgeworks/zen-fisher/internal/game"
	"github.com/everforgeworks/zen-fisher/internal/storage"
)

const (
	// GuestID is the shared local player.
	GuestID = "guest"
	// LegacyGuestKey is where guest saves lived before saves were keyed by player.
	LegacyGuestKey = "zenFisherSave"

	saveTimeout = 5 * time.Second
)

// ErrClosed is returned for commands sent to a session that has shut down.
var ErrClosed = errors.New("session closed")

// Publisher receives every event a session emits.
type Publisher func(playerID string, e game.Event)

// Options configure new sessions.
type Options struct {
	Catalog      *game.Catalog
	Store        storage.Gateway
	Publish      Publisher
	Seed         int64 // 0 draws a fresh seed per session
	Tick         time.Duration
	SaveInterval time.Duration
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Tick <= 0 {
		o.Tick = game.TickInterval
	}
	if o.SaveInterval <= 0 {
		o.SaveInterval = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Player is the mutable game handed to commands. It is only valid inside
// the command that received it.
type Player struct {
	ID      string
	World   *game.WorldState
	Machine *game.Machine
	Shop    *game.Shop
	Catalog *game.Catalog

	now func() time.Time
}

// Reset replaces the world with a fresh one, keeping the player's name.
func (p *Player) Reset() {
	game.ResetWorldState(p.Catalog, p.World, p.now())
	p.Machine.Reset()
}

// View is a consistent read-only snapshot of a session.
type View struct {
	Phase    game.Phase      `json:"phase"`
	Progress float64         `json:"progress"`
	Combo    int             `json:"combo"`
	Speed    float64         `json:"speed"`
	World    json.RawMessage `json:"world"`
}

type command struct {
	fn    func(*Player) error
	reply chan error
}

// Session owns one player's running game.
type Session struct {
	ID string

	opts    Options
	player  Player
	world   game.WorldState
	clock   *game.Clock
	offline int64

	inbox      chan command
	saves      chan []byte
	quit       chan struct{}
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// Open loads (or creates) the player's world and starts the session.
func Open(ctx context.Context, playerID string, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	if opts.Catalog == nil || opts.Store == nil {
		return nil, fmt.Errorf("session needs a catalog and a store")
	}
	now := opts.Now()

	// 1. Load & migrate
	world, offline, err := loadWorld(ctx, playerID, opts, now)
	if err != nil {
		return nil, err
	}

	// 2. Randomness
	seed := opts.Seed
	if seed == 0 {
		if seed, err = game.NewSeed(); err != nil {
			return nil, err
		}
	}
	rng := game.NewRandom(seed)

	s := &Session{
		ID:         playerID,
		opts:       opts,
		world:      world,
		offline:    offline,
		inbox:      make(chan command, 64),
		saves:      make(chan []byte, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}

	emit := game.EmitterFunc(func(e game.Event) {
		if opts.Publish != nil {
			opts.Publish(playerID, e)
		}
	})
	machine := game.NewMachine(opts.Catalog, rng, emit)
	machine.SetClock(opts.Now)
	s.clock = game.NewClock(rng, emit)
	s.clock.SetPeriod(s.opts.Tick)
	s.player = Player{
		ID:      playerID,
		World:   &s.world,
		Machine: machine,
		Shop:    game.NewShop(opts.Catalog, emit),
		Catalog: opts.Catalog,
		now:     opts.Now,
	}

	if offline > 0 {
		emit.Emit(game.Event{Kind: game.EventOffline, Amount: offline})
	}

	go s.writer()
	go s.run()
	return s, nil
}

func loadWorld(ctx context.Context, playerID string, opts Options, now time.Time) (game.WorldState, int64, error) {
	raw, err := opts.Store.Load(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) && playerID == GuestID {
		raw, err = opts.Store.Load(ctx, LegacyGuestKey)
	}
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("SESSION: new player %s", playerID)
		return game.NewWorldState(opts.Catalog, now), 0, nil
	}
	if err != nil {
		return game.WorldState{}, 0, fmt.Errorf("load save %s: %w", playerID, err)
	}

	res, err := game.NewMigrator(opts.Catalog).Migrate(raw, now)
	if err != nil {
		// Keep the unreadable record next to the fresh one.
		backup := fmt.Sprintf("%s.corrupt-%d", playerID, now.UnixMilli())
		if saveErr := opts.Store.Save(ctx, backup, raw); saveErr != nil {
			return game.WorldState{}, 0, fmt.Errorf("back up unreadable save %s: %w", playerID, errors.Join(err, saveErr))
		}
		log.Printf("SESSION: save for %s unreadable (%v), kept as %s and starting fresh", playerID, err, backup)
		return game.NewWorldState(opts.Catalog, now), 0, nil
	}
	if len(res.AppliedSteps) > 0 {
		log.Printf("SESSION: migrated save for %s: %v", playerID, res.AppliedSteps)
	}
	return res.World, res.OfflineEarned, nil
}

// OfflineEarned is the offline income credited when the session opened.
func (s *Session) OfflineEarned() int64 {
	return s.offline
}

func (s *Session) run() {
	defer close(s.done)

	tick := time.NewTicker(s.opts.Tick)
	save := time.NewTicker(s.opts.SaveInterval)
	defer tick.Stop()
	defer save.Stop()

	for {
		select {
		case <-s.quit:
			s.shutdown()
			return
		case cmd := <-s.inbox:
			cmd.reply <- cmd.fn(&s.player)
		case <-tick.C:
			s.player.Machine.Tick(&s.world)
			s.clock.Tick(&s.world)
		case <-save.C:
			s.queueSave()
		}
	}
}

func (s *Session) snapshot() ([]byte, error) {
	s.world.LastSaveTime = s.opts.Now().UTC().UnixMilli()
	return json.Marshal(s.world)
}

// queueSave hands the latest snapshot to the writer, replacing a snapshot
// the writer has not picked up yet.
func (s *Session) queueSave() {
	data, err := s.snapshot()
	if err != nil {
		log.Printf("SAVE: encode %s: %v", s.ID, err)
		return
	}
	select {
	case s.saves <- data:
		return
	default:
	}
	select {
	case <-s.saves:
	default:
	}
	select {
	case s.saves <- data:
	default:
	}
}

func (s *Session) writer() {
	defer close(s.writerDone)
	for data := range s.saves {
		if err := s.write(data); err != nil {
			log.Printf("SAVE: %s: %v", s.ID, err)
		}
	}
}

func (s *Session) write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.opts.Store.Save(ctx, s.ID, data)
}

// shutdown drains the background writer, then saves one last time.
func (s *Session) shutdown() {
	close(s.saves)
	<-s.writerDone

	data, err := s.snapshot()
	if err != nil {
		s.closeErr = fmt.Errorf("encode final save: %w", err)
		return
	}
	if err := s.write(data); err != nil {
		s.closeErr = fmt.Errorf("final save: %w", err)
	}
}

// Close stops the session after a final save. It is safe to call twice.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
	return s.closeErr
}

// Do runs fn on the session goroutine and returns its error.
func (s *Session) Do(ctx context.Context, fn func(*Player) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case s.inbox <- cmd:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.Do(ctx, func(p *Player) error {
		world, err := json.Marshal(p.World)
		if err != nil {
			return err
		}
		v = View{
			Phase:    p.Machine.Phase(),
			Progress: p.Machine.Progress(),
			Combo:    p.Machine.Combo(),
			Speed:    p.Machine.SpeedMultiplier(p.World),
			World:    world,
		}
		return nil
	})
	return v, err
}
