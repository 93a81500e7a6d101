package main

import (
	"context"
	"flag"
	"log"
	"os"

	"SignalFusion/internal/di"
	"SignalFusion/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s clickhouse=%t kafka=%t prediction=%t cache=%s",
		cfg.Environment, cfg.ClickHouse.Enabled, cfg.Kafka.Enabled, cfg.Prediction.Enabled, cfg.Cache.Type)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
