package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shop-agent/config"
	"shop-agent/internal/adapters/repl"
	"shop-agent/internal/app"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	userID := flag.String("user", "local", "conversation user id")
	demo := flag.Bool("demo", false, "use the in-memory store regardless of config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *demo {
		cfg.Store.Backend = "memory"
	}

	logger, err := app.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	st, cleanup, err := app.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer cleanup()

	svc := app.Build(st, cfg, logger)

	// One-shot mode: remaining args form a single message.
	if args := flag.Args(); len(args) > 0 {
		res, err := svc.HandleMessage(ctx, *userID, strings.Join(args, " "))
		if err != nil {
			logger.Fatal("message failed", zap.Error(err))
		}
		fmt.Println(res.Reply)
		return
	}

	repl.Run(ctx, svc, *userID, bufio.NewReader(os.Stdin))
}
