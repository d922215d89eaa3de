// tdhist republishes the full Tesouro Direto price/rate history from
// tesourotransparente.gov.br as a windowed, diff-friendly JSON snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	_ "time/tzdata"

	"tdfeed/internal/config"
	"tdfeed/internal/fetch"
	"tdfeed/internal/job"
	"tdfeed/internal/logger"
	"tdfeed/internal/snapshot"
	"tdfeed/internal/source"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	store, err := snapshot.NewStore(cfg.History.Output)
	if err != nil {
		log.Fatalf("preparing snapshot store failed: %v", err)
	}
	client := fetch.NewClient(cfg.History.Timeout(), map[string]string{
		"User-Agent": "Mozilla/5.0",
		"Accept":     "text/csv,*/*",
	})
	runner := job.NewHistory(cfg.History, source.NewHistorical(client, cfg.History.URL), store)

	summary, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("history run failed: %v", err)
	}
	fmt.Println(summary)
}
