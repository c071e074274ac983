package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/unicoop/convenios-backend/config"
	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/bootstrap"
	"github.com/unicoop/convenios-backend/internal/reminders"
)

func main() {
	once := flag.Bool("once", false, "run the reminder job once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, db, err := bootstrap.OpenDB(ctx, &cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	job := bootstrap.NewServices(cfg, db, rdb, fb).Reminders

	if *once {
		sent, err := job.Run(ctx)
		if err != nil {
			log.Fatalf("reminders: %v", err)
		}
		log.Printf("reminders sent: %d", sent)
		return
	}

	scheduler := reminders.NewScheduler(job)
	if err := scheduler.Start(cfg.Reminders.Schedule); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	<-ctx.Done()
	log.Println("stopping scheduler")
	scheduler.Stop()
}
