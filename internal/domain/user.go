package domain

import (
	"strconv"
	"time"
)

// Channel identifies the messaging provider a user receives messages on.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
)

// Subscription statuses. Only active users receive scheduled messages.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a subscriber account and its messaging identifiers.
type User struct {
	ID        int64
	ChatID    int64   // Telegram chat id; 0 if not registered
	Phone     string  // E.164 phone for WhatsApp; empty if not registered
	Channel   Channel // preferred delivery channel
	Plan      string  // subscription plan name (free, pro, ...)
	Status    string  // active|inactive
	CreatedAt time.Time
}

// Recipient returns the opaque recipient identifier for the user's channel,
// or "" if the user has no identifier registered for it.
func (u *User) Recipient() string {
	switch u.Channel {
	case ChannelWhatsApp:
		return u.Phone
	default:
		if u.ChatID == 0 {
			return ""
		}
		return strconv.FormatInt(u.ChatID, 10)
	}
}

// Location holds a user's one preferred place plus rendering preferences.
type Location struct {
	UserID   int64
	City     string
	Country  string // ISO country code, e.g. "GB"
	Timezone string // IANA name, informational only (delivery is UTC)
	Language string // "en" or "ur"
	Unit     string // "C" or "F"
}
