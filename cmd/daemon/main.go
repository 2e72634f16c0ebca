package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clipsync/go-backend/internal/config"
	"clipsync/go-backend/internal/engine"
	"clipsync/go-backend/internal/identity"
	"clipsync/go-backend/internal/peers"
	"clipsync/go-backend/internal/platform/privacylog"
	"clipsync/go-backend/internal/relay"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	dataDir := flag.String("data-dir", "", "Directory for daemon local data (optional)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address, e.g. 127.0.0.1:9097 (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("clipsync-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := slog.New(privacylog.WrapHandler(slog.NewTextHandler(os.Stderr, nil)))
	slog.SetDefault(log)

	if err := run(ctx, log, *configPath, *dataDir, *metricsAddr); err != nil {
		log.Error("clipsync-daemon failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("clipsync-daemon stopped")
}

func run(ctx context.Context, log *slog.Logger, configPath, dataDir, metricsAddr string) error {
	cfg := config.LoadFromPath(configPath)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}

	passphrase := os.Getenv("CLIPSYNC_KEYSTORE_PASSPHRASE")
	mgr, err := loadOrCreateIdentity(cfg, passphrase, log)
	if err != nil {
		return err
	}
	log.Info("identity ready", "device_id", mgr.ID(), "name", mgr.DisplayName())

	var store peers.Store
	if passphrase != "" {
		store = peers.NewFileStore(filepath.Join(cfg.DataDir, "peers.enc"), passphrase)
	} else {
		store = peers.NewInMemoryStore()
	}

	var room *relay.RoomCipher
	if cfg.RelayEnabled && cfg.RoomID != "" {
		room = relay.NewRoomCipher(cfg.RoomID, cfg.RoomPassword)
		log.Info("relay room configured", "room_id", cfg.RoomID)
	}

	// Real transports attach through the engine ports; until one does, a
	// loopback wire keeps the seal/open path exercised end to end.
	loopback := &engine.LoopbackWire{}
	core, err := engine.New(engine.Config{
		Identity: mgr,
		Peers:    store,
		Wire:     loopback,
		Room:     room,
		Settings: engine.Settings{
			SyncText:   cfg.SyncText,
			SyncImages: cfg.SyncImages,
			MaxSizeMB:  cfg.MaxSizeMB,
		},
		Logger: log,
	})
	if err != nil {
		return err
	}
	loopback.Handler = core.HandleEnvelope

	if metricsAddr != "" {
		go serveMetrics(ctx, log, metricsAddr)
	}

	known, err := store.Snapshot()
	if err != nil {
		return fmt.Errorf("load peers: %w", err)
	}
	log.Info("clipsync-daemon started",
		"peer_count", len(known),
		"relay", room != nil)
	<-ctx.Done()
	return nil
}

func loadOrCreateIdentity(cfg config.Resolved, passphrase string, log *slog.Logger) (*identity.Manager, error) {
	path := filepath.Join(cfg.DataDir, "identity.enc")
	if passphrase == "" {
		log.Warn("CLIPSYNC_KEYSTORE_PASSPHRASE not set, using an ephemeral identity")
		return identity.NewManager(cfg.DeviceName)
	}

	mgr, err := identity.LoadFromFile(path, passphrase)
	if err == nil {
		return mgr, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open keystore: %w", err)
	}

	mgr, err = identity.NewManager(cfg.DeviceName)
	if err != nil {
		return nil, err
	}
	if err := mgr.SaveToFile(path, passphrase); err != nil {
		return nil, fmt.Errorf("save keystore: %w", err)
	}
	log.Info("created new identity keystore")
	return mgr, nil
}

func serveMetrics(ctx context.Context, log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err.Error())
	}
}
