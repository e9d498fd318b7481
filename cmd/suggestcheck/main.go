// suggestcheck prints the ranked suggestions for one chat straight from
// the store, without sending anything to Telegram.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"pantrybot/internal/ai"
	"pantrybot/internal/config"
	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
	"pantrybot/internal/suggest"
)

func main() {
	var chatID int64
	var limit int
	var useAI bool
	flag.Int64Var(&chatID, "chat", 0, "Chat ID to rank suggestions for")
	flag.Int64Var(&chatID, "c", 0, "Chat ID to rank suggestions for (short form)")
	flag.IntVar(&limit, "limit", 5, "Maximum suggestions to print")
	flag.BoolVar(&useAI, "ai", false, "Run the configured AI re-ranking pass")
	flag.Parse()

	if chatID == 0 {
		log.Fatalf("missing required -chat flag")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	docs, err := docstore.Open(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}

	var llm ai.Client
	if useAI {
		llm, err = ai.NewFromConfig(cfg.AI)
		if err != nil {
			log.Fatalf("failed to configure AI provider: %v", err)
		}
	}

	ctx := context.Background()
	store := items.NewStore(docs)
	engine := suggest.NewEngine(store, llm)

	candidates, err := engine.Suggest(ctx, chatID, limit)
	if err != nil {
		log.Fatalf("failed to rank suggestions: %v", err)
	}
	if len(candidates) == 0 {
		fmt.Println("no history for that chat yet")
		return
	}
	for _, c := range candidates {
		fmt.Printf("%.3f  %s\n", c.Score, c.DisplayName)
	}
}
