package domain

import "time"

// Message delivery statuses.
const (
	MessageDelivered = "delivered"
	MessageFailed    = "failed"
)

// Message is one append-only delivery audit row. It is created once per
// dispatch attempt and never mutated afterwards.
type Message struct {
	ID        string // uuid
	UserID    int64
	Kind      Kind
	Content   string // rendered text; empty for failed attempts
	Status    string // delivered|failed
	Error     string // provider or processing error; empty on success
	CreatedAt time.Time
}

// Setting is one key-value credential row (bot token, weather API key, ...).
// The scheduler only ever reads settings; rows with Enabled=false are
// treated as absent.
type Setting struct {
	Key     string
	Value   string
	Enabled bool
}

// Credential keys the sweep resolves from the settings table.
const (
	SettingTelegramBotToken   = "telegram_bot_token"
	SettingWeatherAPIKey      = "weather_api_key"
	SettingTwilioAccountSID   = "twilio_account_sid"
	SettingTwilioAuthToken    = "twilio_auth_token"
	SettingTwilioWhatsAppFrom = "twilio_whatsapp_from"
)
