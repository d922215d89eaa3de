// tdresgate drives a headless browser through the tesourodireto.com.br
// redeem-yield CSV export and republishes it as a JSON snapshot.
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

	store, err := snapshot.NewStore(cfg.Redeem.Output)
	if err != nil {
		log.Fatalf("preparing snapshot store failed: %v", err)
	}
	browser := fetch.NewBrowser(cfg.Redeem.Timeout())
	runner := job.NewRedeem(cfg.Redeem, source.NewRedeem(browser, cfg.Redeem.PageURL, cfg.Redeem.URL), store)

	summary, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("redeem run failed: %v", err)
	}
	fmt.Println(summary)
}
