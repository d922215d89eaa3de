// tdranking republishes the investidor10 Tesouro Direto redeem ranking
// table as a JSON snapshot for spreadsheet consumption.
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

	store, err := snapshot.NewStore(cfg.Ranking.Output)
	if err != nil {
		log.Fatalf("preparing snapshot store failed: %v", err)
	}
	client := fetch.NewClient(cfg.Ranking.Timeout(), map[string]string{
		"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "pt-BR,pt;q=0.9,en;q=0.8",
	})
	runner := job.NewRanking(cfg.Ranking, source.NewRanking(client, cfg.Ranking.URL), store)

	summary, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("ranking run failed: %v", err)
	}
	fmt.Println(summary)
}
