package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"nomadlybot/internal/config"
	pg "nomadlybot/internal/infra/db/postgres"
	"nomadlybot/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	chatID := flag.Int64("chat", 0, "chat id whose counter is reset")
	count := flag.Int("n", -1, "links to grant; defaults to free_links.default")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *chatID == 0 {
		log.Fatal("-chat is required")
	}
	n := *count
	if n < 0 {
		n = cfg.FreeLinks.Default
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbCfg := cfg.Database
	dbCfg.MaxConns = 2
	pool, err := pg.NewPgxPool(ctx, dbCfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	freeLinksUC := usecase.NewFreeLinksUseCase(pg.NewFreeLinkRepo(pool), cfg.FreeLinks.Default)
	if err := freeLinksUC.Reset(ctx, *chatID, n); err != nil {
		log.Fatalf("reset chat %d: %v", *chatID, err)
	}
	left, err := freeLinksUC.Remaining(ctx, *chatID)
	if err != nil {
		log.Fatalf("read back chat %d: %v", *chatID, err)
	}
	fmt.Printf("chat %d now has %d free link(s)\n", *chatID, left)
}
