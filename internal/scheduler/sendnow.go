package scheduler

import (
	"context"
	"fmt"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/format"
)

// SendNow delivers the current weather to a single user immediately,
// bypassing the matcher. It shares the formatter and dispatchers with the
// sweep but fails fast instead of synthesizing warning messages, and it
// writes no Message record. The rendered text is returned for the caller
// (a manual "send now" trigger) to display.
func (s *Scheduler) SendNow(ctx context.Context, userID int64) (string, error) {
	user, loc, err := s.repo.GetUserWithLocation(ctx, userID)
	if err != nil {
		return "", err
	}
	recipient := user.Recipient()
	if recipient == "" {
		return "", fmt.Errorf("user %d: %w", userID, ErrNoRecipient)
	}
	if loc == nil || loc.City == "" || loc.Country == "" {
		return "", fmt.Errorf("user %d: %w", userID, ErrNoLocation)
	}

	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return "", err
	}

	fctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	cur, err := s.weather.FetchCurrent(fctx, creds.weatherKey, loc.City, loc.Country)
	cancel()
	if err != nil {
		return "", err
	}

	text := format.Weather(cur, format.Options{Language: loc.Language, Unit: loc.Unit})
	if err := s.dispatch(ctx, creds, user.Channel, recipient, text); err != nil {
		return "", err
	}
	return text, nil
}
