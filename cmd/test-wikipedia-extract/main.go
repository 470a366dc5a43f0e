// Test program that fetches live Wikipedia pages and prints the sentence
// records the harvester would index for them.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/fibs/internal/extract"
	"github.com/ppiankov/fibs/internal/extract/adapters"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/pipeline"
)

func main() {
	fmt.Println("=== Wikipedia Sentence Extraction Test ===")
	fmt.Println()

	titles := os.Args[1:]
	if len(titles) == 0 {
		titles = []string{"Laksa", "Borscht", "Mercury"} // Mercury is a disambiguation page
	}

	cfg := model.DefaultConfig()
	fetcher := pipeline.NewFetcher(pipeline.FetcherOptions{
		Timeout:        cfg.Wikipedia.Timeout,
		UserAgent:      cfg.Wikipedia.UserAgent,
		MaxBytes:       cfg.Wikipedia.MaxBodyBytes,
		RequestsPerSec: cfg.Wikipedia.RequestsPerSec,
		Burst:          cfg.Wikipedia.Burst,
		RespectRobots:  true,
	})
	source := adapters.NewWikipediaSource(fetcher, cfg.Wikipedia.Language, "")

	segmenter, err := extract.NewPunktSegmenter()
	if err != nil {
		fmt.Printf("Segmenter error: %v\n", err)
		os.Exit(1)
	}
	extractor := extract.NewExtractor(segmenter, extract.OptionsFromConfig(cfg.Extract))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, title := range titles {
		fmt.Printf("Testing: %s\n", title)
		fmt.Println(strings.Repeat("-", 60))

		article, err := source.Fetch(ctx, title)
		if err != nil {
			fmt.Printf("  Fetch error: %v\n\n", err)
			continue
		}
		records := extractor.Collect(article.SectionTree())

		if extractor.IsDisambiguation(records) {
			fmt.Println("  ⚠️  DISAMBIGUATION PAGE (would be skipped)")
		} else {
			fmt.Printf("  ✓ %d sections, %d records\n", len(article.Sections), len(records))
		}
		for _, r := range records[:min(5, len(records))] {
			fmt.Printf("     [%d] %s: %s\n", r.ID, r.Name, r.Line)
		}
		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Println("\nNote: This program needs network access to Wikipedia.")
}
