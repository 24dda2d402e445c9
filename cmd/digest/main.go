package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"locum-match/internal/app"
	"locum-match/internal/config"
	"locum-match/internal/database/migration"
	"locum-match/internal/scheduler"
)

// The digest binary either runs one weekly digest and exits (-once) or stays
// up and runs them on the configured cron spec.
func main() {
	once := flag.Bool("once", false, "run a single digest and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	container, err := app.NewContainer(cfg, log.Default())
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	r := migration.Runner{Dir: "migrations"}
	if err := r.Run(migCtx, container.DB.SQLDB()); err != nil {
		migCancel()
		log.Fatalf("migration failed: %v", err)
	}
	migCancel()

	go container.Hub.Run()

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		m, err := container.Digest.Run(ctx)
		if err != nil {
			log.Fatalf("digest run failed: %v", err)
		}
		log.Printf("digest run %s finished with %d results", m.ID, m.ResultCount)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(container.Digest, cfg.Digest.CronSpec, container.Logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sched.Stop()
}
