// scrapecheck fetches a recipe URL and prints what the importer makes of
// it, for eyeballing scraper behavior against real pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"pantrybot/internal/ai"
	"pantrybot/internal/config"
	"pantrybot/internal/recipe"
)

func main() {
	var rawURL string
	var useAI bool
	flag.StringVar(&rawURL, "url", "", "Recipe URL to scrape")
	flag.StringVar(&rawURL, "u", "", "Recipe URL to scrape (short form)")
	flag.BoolVar(&useAI, "ai", false, "Also run the configured AI normalizer")
	flag.Parse()

	if rawURL == "" {
		log.Fatalf("missing required -url flag")
	}

	ctx := context.Background()
	importer := recipe.NewImporter()

	imported, err := importer.Import(ctx, rawURL)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Title: %s\n\nRaw ingredients:\n", imported.Title)
	for _, line := range imported.Ingredients {
		fmt.Printf("  %s\n", line)
	}

	var llm ai.Client
	if useAI {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		llm, err = ai.NewFromConfig(cfg.AI)
		if err != nil {
			log.Fatalf("failed to configure AI provider: %v", err)
		}
	}

	fmt.Println("\nNormalized:")
	for _, line := range recipe.Normalize(ctx, llm, imported.Title, imported.Ingredients) {
		fmt.Printf("  %s\n", line)
	}
}
