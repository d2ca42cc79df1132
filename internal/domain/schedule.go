package domain

// Kind enumerates the content types a schedule can deliver.
type Kind string

const (
	KindWeatherMorning Kind = "weather_morning"
	KindWeatherEvening Kind = "weather_evening"
	KindNews           Kind = "news"
)

// IsWeather reports whether the kind requires a weather fetch.
func (k Kind) IsWeather() bool {
	return k == KindWeatherMorning || k == KindWeatherEvening
}

// Valid reports whether k is one of the known schedule kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWeatherMorning, KindWeatherEvening, KindNews:
		return true
	}
	return false
}

// Schedule is one recurring delivery obligation owned by a user.
// DeliveryTime is a zero-padded "HH:MM" wall-clock in UTC; the sweep matches
// it by exact string comparison against the current slot.
type Schedule struct {
	ID           int64
	UserID       int64
	Kind         Kind
	DeliveryTime string
	Enabled      bool
}

// ScheduleRow is the denormalized matcher result: one due schedule joined
// with its owner's recipient identifier and location preferences. It carries
// everything the sweep needs so no further lookups happen per row.
type ScheduleRow struct {
	ScheduleID int64
	UserID     int64
	Kind       Kind
	Channel    Channel
	Recipient  string
	City       string
	Country    string
	Timezone   string
	Language   string
	Unit       string
}

// HasLocation reports whether the row carries enough of a saved location
// to ask the weather provider for it.
func (r *ScheduleRow) HasLocation() bool {
	return r.City != "" && r.Country != ""
}
