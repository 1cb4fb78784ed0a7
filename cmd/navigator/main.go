// Package main is the Navigator terminal client: it authenticates a player,
// loads the world catalogs, streams room events over the realtime socket,
// and renders the console, room panel, and status sidebar.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/admin"
	"github.com/mistvale/navigator/internal/alias"
	"github.com/mistvale/navigator/internal/config"
	"github.com/mistvale/navigator/internal/events"
	"github.com/mistvale/navigator/internal/hud"
	"github.com/mistvale/navigator/internal/lifecycle"
	"github.com/mistvale/navigator/internal/observability"
	"github.com/mistvale/navigator/internal/scripting"
	"github.com/mistvale/navigator/internal/session"
	"github.com/mistvale/navigator/internal/ui"
	"github.com/mistvale/navigator/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	player := flag.String("player", "", "player id to start a session for")
	room := flag.String("room", "", "room id to join (optional; server assigns one if unset)")
	plain := flag.Bool("plain", false, "use the plain line console instead of the full-screen UI")
	flag.Parse()

	if *player == "" {
		log.Fatal("the -player flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	endpoints, err := config.ResolveEndpoints(cfg.API)
	if err != nil {
		logger.Fatal("resolving endpoints", zap.Error(err))
	}
	logger.Info("starting navigator",
		zap.String("api_base", endpoints.APIBase),
		zap.String("ws_base", endpoints.WSBase),
		zap.String("player", *player),
	)

	activityLog := events.NewLog()
	store := world.NewStore()
	auth := session.NewAuthClient(endpoints.APIBase, cfg.API.RequestTimeout, logger)
	loader := world.NewLoader(endpoints.APIBase, cfg.API.CanonicalLocale(), cfg.API.RequestTimeout, logger)
	manager := session.NewManager(auth, loader, store, activityLog, endpoints.WSBase, logger)
	defer manager.Close()

	aliases, err := alias.LoadFile(cfg.Client.AliasFile)
	if err != nil {
		logger.Fatal("loading aliases", zap.Error(err))
	}
	if aliases.Len() > 0 {
		logger.Info("aliases loaded", zap.Int("count", aliases.Len()))
	}

	engine := scripting.NewEngine(0, logger)
	engine.Send = func(command string) error {
		return manager.SendCommand(command, session.SendOptions{})
	}
	engine.Hide = activityLog.Hide
	engine.Note = func(text string) {
		activityLog.Append(events.Entry{Kind: "note", Summary: text})
	}
	if err := engine.LoadFile(cfg.Client.TriggerFile); err != nil {
		logger.Fatal("loading triggers", zap.Error(err))
	}
	defer engine.Close()

	model := hud.NewModel()

	lc := lifecycle.NewLifecycle(logger)

	// Feed each new entry to the status extractor and the trigger engine.
	consumeCtx, cancelConsume := context.WithCancel(context.Background())
	lc.Add("entry-consumer", &lifecycle.FuncService{
		StartFn: func() error {
			tail := activityLog.NewTail()
			changes := activityLog.Subscribe()
			for {
				select {
				case <-consumeCtx.Done():
					return nil
				case <-changes:
					for _, entry := range tail.Next() {
						model.ApplyEntry(entry)
						engine.Dispatch(entry)
					}
				}
			}
		},
		StopFn: cancelConsume,
	})

	if cfg.HUD.AutoRefresh {
		poller := hud.NewPoller(manager, model, cfg.HUD.RefreshInterval, true, logger)
		pollCtx, cancelPoll := context.WithCancel(context.Background())
		lc.Add("status-poller", &lifecycle.FuncService{
			StartFn: func() error {
				err := poller.Run(pollCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			},
			StopFn: cancelPoll,
		})
	}

	var adminClient *admin.Client
	if cfg.API.AdminToken != "" {
		adminClient = admin.NewClient(endpoints.APIBase, cfg.API.AdminToken, cfg.API.RequestTimeout, logger)
	}

	usePlain := *plain || cfg.Client.Plain
	if usePlain {
		lc.Add("console", ui.NewPlainConsole(os.Stdout, activityLog, ui.DefaultWidth))
	} else {
		lc.Add("ui", ui.NewApp(activityLog, store, manager, model, aliases, adminClient, logger))
	}

	// Open the session once the services are up.
	sessionCtx, cancelSession := context.WithCancel(context.Background())
	lc.Add("session", &lifecycle.FuncService{
		StartFn: func() error {
			// The loader enforces its own request timeouts; the session stays
			// up until shutdown.
			if err := manager.StartSession(sessionCtx, *player, *room); err != nil {
				return err
			}
			<-sessionCtx.Done()
			return nil
		},
		StopFn: func() {
			cancelSession()
			manager.Close()
		},
	})

	start := time.Now()
	if err := lc.Run(context.Background()); err != nil {
		logger.Error("navigator exited", zap.Error(err), zap.Duration("uptime", time.Since(start)))
		os.Exit(1)
	}
	logger.Info("navigator exited", zap.Duration("uptime", time.Since(start)))
}
