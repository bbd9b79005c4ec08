// Command worldserver runs the authoritative world simulation: the fixed-rate
// tick loop, the TCP game listener and the WebSocket gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openrift/riftd/internal/config"
	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/db"
	"github.com/openrift/riftd/internal/gameserver"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/sim"
	"github.com/openrift/riftd/internal/world"
)

const defaultConfigPath = "config/worldserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := defaultConfigPath
	if p := os.Getenv("RIFTD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("riftd world server starting", "log_level", cfg.LogLevel)

	tables, err := data.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading gameplay tables: %w", err)
	}
	slog.Info("gameplay tables loaded",
		"skills", len(tables.Skills),
		"mobs", len(tables.Mobs),
		"spawns", len(tables.Spawns),
		"obstacles", len(tables.Obstacles))

	var chars *db.CharacterRepository
	if cfg.Database.Enabled() {
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		chars = db.NewCharacterRepository(database)
		slog.Info("database connected", "host", cfg.Database.Host)
	} else {
		slog.Info("persistence disabled, characters are session-only")
	}

	w := world.New()
	w.Obstacles = tables.Obstacles

	clients := gameserver.NewClients()
	netSync := gameserver.NewNetSync(clients)

	// savePlayer persists on disconnect and on the autosave cadence.
	savePlayer := func(p *model.Player) {}
	if chars != nil {
		savePlayer = func(p *model.Player) {
			// Copy before leaving the loop goroutine; the save runs async.
			snapshot := *p.Entity
			charID := p.CharacterID
			go func() {
				saveCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				cp := model.Player{Entity: &snapshot, CharacterID: charID}
				if err := chars.Save(saveCtx, &cp); err != nil {
					slog.Error("saving character", "entity", snapshot.ID, "err", err)
				}
			}()
		}
	}

	loop := sim.New(w, tables, netSync.Flush, savePlayer)
	loop.SeedSpawns()

	var charStore gameserver.CharacterStore
	if chars != nil {
		charStore = chars
	}
	handler := gameserver.NewHandler(loop, clients, charStore)

	server, err := gameserver.NewServer(cfg.GameServer, handler, clients)
	if err != nil {
		return fmt.Errorf("creating game server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("game server: %w", err)
		}
		return nil
	})

	if cfg.WSGateway.Enabled {
		gateway := gameserver.NewWSGateway(cfg.WSGateway, server)
		g.Go(func() error {
			if err := gateway.Run(gctx); err != nil {
				return fmt.Errorf("websocket gateway: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
