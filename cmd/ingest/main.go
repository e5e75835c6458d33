package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"CandleVault/internal/di"
	"CandleVault/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbol overrides")
	timeout := flag.Duration("timeout", 10*time.Minute, "run timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	symbols := cfg.Provider.Symbols
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
		for i := range symbols {
			symbols[i] = strings.TrimSpace(symbols[i])
		}
	}
	if len(symbols) == 0 {
		log.Fatal("no symbols configured")
	}

	runner, cleanup, err := di.InitializeIngestRunner(cfg)
	if err != nil {
		log.Fatalf("ingest initialization failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := runner.Run(ctx, symbols)
	cleanup()
	if err != nil {
		log.Printf("ingest run failed: %v", err)
		os.Exit(1)
	}

	log.Printf("ingest complete: %d/%d symbols, success rate %.2f%%, breaker %s",
		len(report.SymbolsSucceeded), report.SymbolsRequested,
		report.SuccessRatePercent, report.BreakerState)

	if len(report.SymbolsSucceeded) == 0 {
		os.Exit(1)
	}
}
