package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pantrybot/internal/ai"
	"pantrybot/internal/bot"
	"pantrybot/internal/config"
	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
	"pantrybot/internal/recipe"
	"pantrybot/internal/schedule"
	"pantrybot/internal/suggest"
	"pantrybot/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	shutdown, err := telemetry.Setup(ctx, "pantrybot")
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(flushCtx)
	}()

	docs, err := docstore.Open(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}

	llm, err := ai.NewFromConfig(cfg.AI)
	if err != nil {
		log.Fatalf("failed to configure AI provider: %v", err)
	}

	store := items.NewStore(docs)
	engine := suggest.NewEngine(store, llm)
	learner := suggest.NewLearner(store, docs)
	importer := recipe.NewImporter()
	tg := bot.NewTelegram(cfg.Telegram.BotToken)

	b := bot.New(cfg, tg, docs, store, engine, learner, importer, llm)
	weekly := schedule.NewWeekly(cfg.Suggest.Day, cfg.Suggest.Hour, cfg.Location())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(ctx)
	})
	g.Go(func() error {
		return weekly.Run(ctx, b.Broadcast)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped: %v", err)
	}
}
