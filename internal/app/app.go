// Package app wires the delivery subsystem together: sqlite store, provider
// clients, dispatchers, the scheduler and its cron trigger, and a health
// endpoint.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/config"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/scheduler"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/store"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/telegram"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/weather"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/whatsapp"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	httpSrv *http.Server
	repo    store.Repo
	sched   *scheduler.Scheduler
	cron    *cron.Cron
}

func New(cfg config.Config, log *zap.Logger) *App {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	return &App{cfg: cfg, log: log, httpSrv: srv}
}

// Scheduler exposes the scheduler for callers outside the cron trigger
// (e.g. a "send weather now" admin action). Valid after Run has started.
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// Run starts the service and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting weather-news backend",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("sweep", a.cfg.SweepSpec),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	a.sched = scheduler.New(
		repo,
		a.log,
		weather.New(a.cfg.WeatherBaseURL, a.cfg.ProviderTimeout),
		telegram.NewSender(a.cfg.TelegramEndpoint, a.cfg.ProviderTimeout),
		whatsapp.NewSender(),
		a.cfg.ProviderTimeout,
	)

	// The external once-per-minute trigger, hosted in-process.
	a.cron = cron.New()
	if _, err := a.cron.AddFunc(a.cfg.SweepSpec, func() { a.sched.RunSweep(ctx) }); err != nil {
		a.log.Error("invalid sweep spec", zap.Error(err), zap.String("spec", a.cfg.SweepSpec))
		_ = repo.Close()
		return err
	}
	a.cron.Start()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	// Stop the trigger first and let an in-flight sweep drain.
	<-a.cron.Stop().Done()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}
