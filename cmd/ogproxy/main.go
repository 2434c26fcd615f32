package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/yukihamada/ogproxy"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML configuration (optional; env-only without it)")
	addr := flag.String("addr", "", "HTTP listen address override")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Site.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := ogproxy.New(*cfg)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func loadConfig(path string) (*ogproxy.Config, error) {
	if path != "" {
		return ogproxy.Load(path)
	}
	return ogproxy.FromEnv()
}
