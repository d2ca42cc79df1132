// Package scheduler implements the minute sweep that matches due schedules,
// resolves content, formats it per user preferences and dispatches it, plus
// the on-demand single-user send path.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/domain"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/format"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/store"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/weather"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/whatsapp"
)

// WeatherProvider fetches current conditions for a place.
type WeatherProvider interface {
	FetchCurrent(ctx context.Context, apiKey, city, country string) (*weather.Current, error)
}

// TelegramDispatcher sends one message to a Telegram chat id.
type TelegramDispatcher interface {
	Send(ctx context.Context, token, recipient, text string) error
}

// WhatsAppDispatcher sends one message to a WhatsApp phone number.
type WhatsAppDispatcher interface {
	Send(ctx context.Context, creds whatsapp.Credentials, recipient, text string) error
}

// ErrMissingCredential aborts a sweep before any row is processed.
var ErrMissingCredential = errors.New("missing credential")

// Errors the on-demand send fails fast with.
var (
	ErrNoRecipient = errors.New("no messaging identifier registered")
	ErrNoLocation  = errors.New("no location set")
)

// How long a sweep may hold the overlap guard before a new trigger is
// allowed to assume it died.
const guardTTL = 5 * time.Minute

// Scheduler orchestrates sweeps. It owns no persistent state; everything it
// reads and appends belongs to the store.
type Scheduler struct {
	repo     store.Repo
	log      *zap.Logger
	weather  WeatherProvider
	telegram TelegramDispatcher
	whatsapp WhatsAppDispatcher

	callTimeout time.Duration
	now         func() time.Time
	guard       runGuard
}

// New creates a Scheduler. callTimeout bounds each provider call; zero falls
// back to 15s.
func New(repo store.Repo, log *zap.Logger, wp WeatherProvider, tg TelegramDispatcher, wa WhatsAppDispatcher, callTimeout time.Duration) *Scheduler {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &Scheduler{
		repo:        repo,
		log:         log,
		weather:     wp,
		telegram:    tg,
		whatsapp:    wa,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// credentials are the settings rows a sweep resolves once, at its start.
type credentials struct {
	botToken   string
	weatherKey string
	twilio     whatsapp.Credentials
}

// loadCredentials reads the shared credentials. Telegram bot token and
// weather API key are required; Twilio rows are optional (WhatsApp rows fail
// per-row when they are absent).
func (s *Scheduler) loadCredentials(ctx context.Context) (credentials, error) {
	var c credentials
	var err error

	if c.botToken, err = s.repo.GetEnabledSetting(ctx, domain.SettingTelegramBotToken); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c, fmt.Errorf("%w: %s", ErrMissingCredential, domain.SettingTelegramBotToken)
		}
		return c, err
	}
	if c.weatherKey, err = s.repo.GetEnabledSetting(ctx, domain.SettingWeatherAPIKey); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c, fmt.Errorf("%w: %s", ErrMissingCredential, domain.SettingWeatherAPIKey)
		}
		return c, err
	}

	c.twilio.AccountSID, _ = s.repo.GetEnabledSetting(ctx, domain.SettingTwilioAccountSID)
	c.twilio.AuthToken, _ = s.repo.GetEnabledSetting(ctx, domain.SettingTwilioAuthToken)
	c.twilio.From, _ = s.repo.GetEnabledSetting(ctx, domain.SettingTwilioWhatsAppFrom)
	return c, nil
}

// RunSweep executes one full pass for the current minute slot. It is the
// entry point the cron trigger fires; it never returns an error because the
// trigger consumes no result — failures are logged.
func (s *Scheduler) RunSweep(ctx context.Context) {
	now := s.now()
	if !s.guard.tryAcquire(now, guardTTL) {
		s.log.Warn("sweep skipped: previous sweep still running")
		return
	}
	defer s.guard.release()

	slot := domain.Slot(now)
	log := s.log.With(zap.String("slot", slot))

	creds, err := s.loadCredentials(ctx)
	if err != nil {
		// Fatal for this run, not per-user: no rows processed, no records written.
		log.Error("sweep aborted", zap.Error(err))
		return
	}

	rows, err := s.repo.MatchSchedules(ctx, slot)
	if err != nil {
		log.Error("schedule match failed", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		log.Debug("no schedules due")
		return
	}

	var delivered, failed int
	for i := range rows {
		if s.deliverRow(ctx, log, creds, &rows[i]) {
			delivered++
		} else {
			failed++
		}
	}
	log.Info("sweep complete",
		zap.Int("matched", len(rows)),
		zap.Int("delivered", delivered),
		zap.Int("failed", failed),
	)
}

// deliverRow runs steps a–g of the per-row pipeline for one schedule row and
// appends exactly one Message record. It reports whether the dispatch
// succeeded. A panic or error inside one row never aborts the sweep.
func (s *Scheduler) deliverRow(ctx context.Context, log *zap.Logger, creds credentials, row *domain.ScheduleRow) (ok bool) {
	rec := domain.Message{
		ID:     uuid.NewString(),
		UserID: row.UserID,
		Kind:   row.Kind,
		Status: domain.MessageFailed,
	}
	defer func() {
		if r := recover(); r != nil {
			rec.Status = domain.MessageFailed
			rec.Content = ""
			rec.Error = fmt.Sprintf("panic: %v", r)
			log.Error("row processing panicked",
				zap.Int64("userID", row.UserID),
				zap.Any("panic", r),
			)
			ok = false
		}
		if err := s.repo.AppendMessage(ctx, &rec); err != nil {
			log.Error("append message record failed",
				zap.Error(err),
				zap.Int64("userID", row.UserID),
			)
		}
	}()

	text, err := s.renderRow(ctx, creds, row)
	if err != nil {
		rec.Error = err.Error()
		log.Error("row render failed", zap.Error(err), zap.Int64("userID", row.UserID))
		return false
	}

	if err := s.dispatch(ctx, creds, row.Channel, row.Recipient, text); err != nil {
		rec.Error = err.Error()
		log.Error("dispatch failed",
			zap.Error(err),
			zap.Int64("userID", row.UserID),
			zap.String("kind", string(row.Kind)),
		)
		return false
	}

	rec.Status = domain.MessageDelivered
	rec.Content = text
	return true
}

// renderRow resolves content for a row and formats it. Provider failures and
// missing locations are converted into user-visible warnings, not errors;
// only an unknown kind is an error.
func (s *Scheduler) renderRow(ctx context.Context, creds credentials, row *domain.ScheduleRow) (string, error) {
	switch {
	case row.Kind.IsWeather():
		if !row.HasLocation() {
			return format.LocationWarning, nil
		}
		fctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		cur, err := s.weather.FetchCurrent(fctx, creds.weatherKey, row.City, row.Country)
		cancel()
		if err != nil {
			return format.WeatherFailure(err.Error()), nil
		}
		body := format.Weather(cur, format.Options{Language: row.Language, Unit: row.Unit})
		return format.Greeting(row.Kind, row.Language) + "\n\n" + body, nil

	case row.Kind == domain.KindNews:
		// Live headlines are not wired yet; every news schedule gets the
		// fixed placeholder.
		return format.NewsPlaceholder, nil

	default:
		return "", fmt.Errorf("unknown schedule kind %q", row.Kind)
	}
}

// dispatch routes the send to the row's channel with the per-call timeout.
func (s *Scheduler) dispatch(ctx context.Context, creds credentials, channel domain.Channel, recipient, text string) error {
	dctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	switch channel {
	case domain.ChannelWhatsApp:
		return s.whatsapp.Send(dctx, creds.twilio, recipient, text)
	default:
		return s.telegram.Send(dctx, creds.botToken, recipient, text)
	}
}
