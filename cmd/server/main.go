package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/app"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/config"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	// Ensure logger flush; ignore sync error (common on some platforms).
	defer func() { _ = log.Sync() }()

	if err := app.New(cfg, log).Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
