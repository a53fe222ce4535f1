/*
Package main
File: main.go
Description: Server entry point. Loads the catalog, opens the save store,
and serves the REST API and the real-time event hub. Player sessions run
their own simulation loops; shutdown saves every one of them.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/zen-fisher/internal/api"
	"github.com/everforgeworks/zen-fisher/internal/config"
	"github.com/everforgeworks/zen-fisher/internal/game"
	"github.com/everforgeworks/zen-fisher/internal/session"
	"github.com/everforgeworks/zen-fisher/internal/storage"
	"github.com/everforgeworks/zen-fisher/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetPrefix("[ZENFISHER] ")

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load the static catalog from YAML
	catalog, err := game.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	log.Printf("Catalog: %d species, %d locations", len(catalog.Species), len(catalog.Locations))

	// 2. Save store
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Real-time hub
	hub := api.NewHub()
	go hub.Run(ctx)

	// 4. Sessions
	sessions := session.NewManager(session.Options{
		Catalog:      catalog,
		Store:        store,
		Publish:      hub.Publish,
		Seed:         cfg.Seed,
		Tick:         cfg.Tick,
		SaveInterval: cfg.SaveInterval,
	})

	// 5. Hot reload: SIGHUP re-reads the catalog for sessions opened afterwards
	go reloadOnHangup(ctx, cfg.CatalogPath, sessions)

	// 6. Router
	srv := &api.Server{Sessions: sessions, Hub: hub}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           corsMiddleware(srv.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 7. Serve until a signal arrives
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("ZEN FISHER Server live on %s", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = sessions.CloseAll()
			return err
		}
	case <-ctx.Done():
		log.Println("SIGNAL: shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := sessions.CloseAll(); err != nil {
		return err
	}
	log.Println("All sessions saved")
	return nil
}

func openStore(cfg config.Config) (storage.Gateway, func(), error) {
	if cfg.Memory {
		log.Println("Saves: in memory only")
		return storage.NewMemory(), func() {}, nil
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Saves: %s", cfg.DBPath)
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("Close store: %v", err)
		}
	}, nil
}

func reloadOnHangup(ctx context.Context, path string, sessions *session.Manager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
			log.Println("SIGNAL: Reloading catalog...")
			catalog, err := game.LoadCatalog(path)
			if err != nil {
				log.Printf("Catalog reload failed, keeping the current one: %v", err)
				continue
			}
			sessions.SetCatalog(catalog)
		}
	}
}

// corsMiddleware lets browser and desktop clients on other origins call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
