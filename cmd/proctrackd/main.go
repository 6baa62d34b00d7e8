package main

import (
	"context"
	"log"
	"os"

	"proctrack/internal/daemonrun"
)

func main() {
	cfg, err := loadConfig(os.Getenv(configEnv))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("proctrackd: %v", err)
	}
}
