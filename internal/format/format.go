// Package format renders provider data into user-facing message text.
// Everything here is pure: no clock, no network, no persistence — identical
// inputs produce byte-identical output.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/domain"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/weather"
)

// Options selects locale and temperature unit for rendering.
type Options struct {
	Language string // "en" or "ur"; unknown values fall back to "en"
	Unit     string // "C" or "F"; unknown values fall back to "C"
}

// Temperature converts a Celsius value into the requested unit and rounds
// to exactly one decimal place.
func Temperature(celsius float64, unit string) float64 {
	v := celsius
	if strings.EqualFold(unit, "F") {
		v = celsius*9/5 + 32
	}
	return math.Round(v*10) / 10
}

// condition emoji, matched by substring against the provider description in
// priority order.
var conditionEmoji = []struct {
	substr string
	emoji  string
}{
	{"clear", "☀️"},
	{"cloud", "☁️"},
	{"rain", "🌧️"},
	{"thunder", "⛈️"},
	{"snow", "❄️"},
	{"mist", "🌫️"},
	{"fog", "🌫️"},
}

// ConditionEmoji picks the decorative indicator for a condition description.
func ConditionEmoji(description string) string {
	d := strings.ToLower(description)
	for _, c := range conditionEmoji {
		if strings.Contains(d, c.substr) {
			return c.emoji
		}
	}
	return "🌤️"
}

// Weather renders the structured weather block.
func Weather(cur *weather.Current, opts Options) string {
	l := localeFor(opts.Language)
	unit := "C"
	if strings.EqualFold(opts.Unit, "F") {
		unit = "F"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s — %s, %s\n\n", ConditionEmoji(cur.Description), l.weatherUpdate, cur.City, cur.Country)
	if cur.Description != "" {
		fmt.Fprintf(&b, "%s\n", cur.Description)
	}
	fmt.Fprintf(&b, "🌡 %s: %s (%s %s)\n",
		l.temperature, degrees(cur.Temperature, unit), l.feelsLike, degrees(cur.FeelsLike, unit))
	fmt.Fprintf(&b, "↕️ %s: %s / %s\n", l.minMax, degrees(cur.TempMin, unit), degrees(cur.TempMax, unit))
	fmt.Fprintf(&b, "💧 %s: %d%%\n", l.humidity, cur.Humidity)
	fmt.Fprintf(&b, "💨 %s: %s %s\n", l.wind, trimFloat(cur.WindSpeed), l.windUnit)
	fmt.Fprintf(&b, "☁️ %s: %d%%", l.clouds, cur.Clouds)
	return b.String()
}

// degrees renders a converted temperature with its unit suffix, always with
// one decimal place.
func degrees(celsius float64, unit string) string {
	return strconv.FormatFloat(Temperature(celsius, unit), 'f', 1, 64) + "°" + unit
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// Article is one headline/source pair for news rendering.
type Article struct {
	Title  string
	Source string
}

// maxHeadlines caps how many articles a news message renders.
const maxHeadlines = 5

// NoNewsMessage is the fixed text rendered when the article list is empty.
const NoNewsMessage = "📰 No news available right now. Please check back later."

// News renders up to five numbered headline/source pairs.
func News(articles []Article, lang string) string {
	if len(articles) == 0 {
		return NoNewsMessage
	}
	l := localeFor(lang)
	var b strings.Builder
	fmt.Fprintf(&b, "📰 %s\n", l.newsHeader)
	for i, a := range articles {
		if i == maxHeadlines {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s — %s", i+1, a.Title, a.Source)
	}
	return b.String()
}

// Greeting returns the time-of-day greeting for a schedule kind, or "" for
// kinds that carry no greeting.
func Greeting(kind domain.Kind, lang string) string {
	l := localeFor(lang)
	switch kind {
	case domain.KindWeatherMorning:
		return "🌅 " + l.goodMorning
	case domain.KindWeatherEvening:
		return "🌆 " + l.goodEvening
	}
	return ""
}

// Warning texts. These are error-path messages and stay in English for every
// locale so support can grep delivered content for them.

// LocationWarning is sent when a weather schedule fires for a user with no
// saved location.
const LocationWarning = "⚠️ Please set your location to receive weather updates."

// NewsPlaceholder is sent for news schedules until live headlines ship.
const NewsPlaceholder = "📰 News updates are coming soon! Stay tuned."

// WeatherFailure embeds the provider's error as a short plain string; raw
// payloads never reach users.
func WeatherFailure(providerErr string) string {
	return "⚠️ Weather update failed: " + providerErr
}
