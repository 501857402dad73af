package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"entgo.io/ent/dialect"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/taskform/internal/activity"
	"github.com/matthewbaird/taskform/internal/config"
	"github.com/matthewbaird/taskform/internal/event"
	"github.com/matthewbaird/taskform/internal/eventbus"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/server"
	"github.com/matthewbaird/taskform/internal/session"
	"github.com/matthewbaird/taskform/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	resources := resource.NewSQLStore(db, dialect.SQLite)
	if cfg.AtlasBin != "" {
		err = resource.ApplySchema(ctx, cfg.AtlasBin, cfg.AtlasURL, cfg.AtlasDevURL)
	} else {
		err = resources.CreateTable(ctx)
	}
	if err != nil {
		log.Fatalf("migrating resources: %v", err)
	}
	if cfg.SeedResources {
		n, err := resources.Count(ctx)
		if err != nil {
			log.Fatalf("counting resources: %v", err)
		}
		if n == 0 {
			if err := resources.Insert(ctx, resource.SeedResources()...); err != nil {
				log.Fatalf("seeding resources: %v", err)
			}
			log.Printf("seeded %d resources", len(resource.SeedResources()))
		}
	}

	act := activity.NewSQLStore(db, dialect.SQLite)
	if err := act.CreateTable(ctx); err != nil {
		log.Fatalf("creating activity table: %v", err)
	}
	log.Println("database migrated successfully")

	bus := eventbus.New(256)
	health := worker.NewResourceHealthWorker()
	bus.Subscribe("log", eventbus.NewLogConsumer())
	bus.Subscribe("resource_health", health)
	// The bus outlives ctx so session-closed events from shutdown still
	// reach the consumers; Stop drains it.
	bus.Start(context.Background())
	defer bus.Stop()

	recorder := event.NewActivityRecorder(act)
	recorder.SetPublisher(bus)

	sessions, err := session.NewManager(session.Config{
		Store:       resources,
		Recorder:    recorder,
		MaxAge:      cfg.SessionMaxAge,
		IdleTimeout: cfg.SessionIdleTimeout,
		StaleGuard:  cfg.StaleOptionGuard,
		DefaultLang: cfg.Locale,
	})
	if err != nil {
		log.Fatalf("creating session manager: %v", err)
	}
	done := make(chan struct{})
	go func() {
		sessions.Run(ctx, cfg.CleanupInterval)
		close(done)
	}()

	if err := server.Run(ctx, server.Config{
		Port:      cfg.Port,
		Sessions:  sessions,
		Resources: resources,
		Activity:  act,
		Health:    health,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
	<-done
}
