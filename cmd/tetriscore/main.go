// Command tetriscore runs the search core as a standalone line-oriented
// JSON bot, speaking the protocol described in internal/protocol over
// stdin/stdout.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/tetriscore/core/internal/config"
	"github.com/tetriscore/core/internal/harness"
	"github.com/tetriscore/core/internal/heuristic"
	"github.com/tetriscore/core/internal/protocol"
)

var (
	configPath = flag.String("config", "", "path to a bot config JSON file (CONFIG env var if unset)")
	workers    = flag.Int("workers", 0, "number of search worker goroutines (0 = runtime.GOMAXPROCS, clamped to 4)")
)

func main() {
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("tetriscore: %v", err)
	}

	n := *workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
		if n > 4 {
			n = 4
		}
	}

	scorer := heuristic.Scorer{Weights: cfg.FreestyleWeights}
	h := harness.New(scorer, scorer, n)
	defer h.Close()

	protocol.Run(os.Stdin, os.Stdout, h)
}
