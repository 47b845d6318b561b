package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"team-insights/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos")
	out := flag.String("out", "./.cache/MOCK_search.json", "Output file for the search response")
	count := flag.Int("count", 200, "Number of issues to generate")
	project := flag.String("project", "MOCK", "Project key used for issue keys")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible output")
	flag.Parse()

	if *scenario != "mild" && *scenario != "chaos" {
		fmt.Fprintf(os.Stderr, "Unknown scenario %q (want mild or chaos)\n", *scenario)
		os.Exit(2)
	}

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Project:  *project,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, *out)

	if err := engine.Save(*out, engine.Generate(cfg)); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done. Analyze it with: team-insights analyze --input", *out)
}
