// Package telegram dispatches rendered messages over the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram caps bots at ~30 messages/second across all chats; stay under it.
const sendsPerSecond = 25

// Sender wraps the bot API send-message call. The bot client is built lazily
// from the token passed per send and cached until the token changes, so a
// credential rotated in the settings table takes effect on the next sweep
// without restarting the process.
type Sender struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter

	mu    sync.Mutex
	token string
	bot   *tgbotapi.BotAPI
}

// NewSender returns a Sender. endpoint may be empty to use the production
// Bot API; tests point it at a local server.
func NewSender(endpoint string, timeout time.Duration) *Sender {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(sendsPerSecond), sendsPerSecond),
	}
}

func (s *Sender) botFor(token string) (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil && s.token == token {
		return s.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, s.endpoint, s.http)
	if err != nil {
		return nil, providerError(err)
	}
	s.token = token
	s.bot = bot
	return bot, nil
}

// Send delivers text to the given recipient (a decimal chat id) using the
// given bot token. Exactly one outbound send-message call; no retries.
func (s *Sender) Send(ctx context.Context, token, recipient, text string) error {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: bad recipient %q", recipient)
	}
	bot, err := s.botFor(token)
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return providerError(err)
	}
	return nil
}

// providerError separates provider-reported failures (which carry the
// provider's message) from transport failures (which get a generic text so
// raw network errors never reach users).
func providerError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("telegram: %s", apiErr.Message)
	}
	return errors.New("telegram: network error")
}
