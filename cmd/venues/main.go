package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"venues/internal/config"
	"venues/internal/http/handlers"
	"venues/internal/http/server"
	"venues/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}
	if cfg.SeedDemo {
		if err := repos.SeedDemo(db); err != nil {
			log.Fatal(err)
		}
	}

	var rdb *redis.Client
	if cfg.StoreDriver == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = repos.OpenRedis(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		log.Printf("[store] items -> redis %s", cfg.RedisAddr)
	} else {
		log.Printf("[store] items -> sqlite %s", cfg.DBDSN)
	}

	deps := handlers.NewDeps(db, rdb, cfg)
	app := server.New(cfg, deps, server.Options{AccessLog: true, ReloadViews: true})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("[server] shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("[server] forced shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
	log.Println("[server] stopped")
}
