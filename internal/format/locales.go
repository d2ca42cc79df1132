package format

// Supported languages.
const (
	LangEnglish = "en"
	LangUrdu    = "ur"
)

// labels holds the translated strings for one locale. The layout of every
// rendered message is identical across locales; only labels differ.
type labels struct {
	weatherUpdate string
	temperature   string
	feelsLike     string
	minMax        string
	humidity      string
	wind          string
	clouds        string
	goodMorning   string
	goodEvening   string
	newsHeader    string
	windUnit      string
}

var locales = map[string]labels{
	LangEnglish: {
		weatherUpdate: "Weather Update",
		temperature:   "Temperature",
		feelsLike:     "feels like",
		minMax:        "Min/Max",
		humidity:      "Humidity",
		wind:          "Wind",
		clouds:        "Clouds",
		goodMorning:   "Good Morning!",
		goodEvening:   "Good Evening!",
		newsHeader:    "Top Headlines",
		windUnit:      "m/s",
	},
	LangUrdu: {
		weatherUpdate: "موسم کی تازہ کاری",
		temperature:   "درجہ حرارت",
		feelsLike:     "محسوس ہوتا ہے",
		minMax:        "کم از کم / زیادہ سے زیادہ",
		humidity:      "نمی",
		wind:          "ہوا",
		clouds:        "بادل",
		goodMorning:   "صبح بخیر!",
		goodEvening:   "شام بخیر!",
		newsHeader:    "اہم خبریں",
		windUnit:      "m/s",
	},
}

// localeFor falls back to English for unknown language codes.
func localeFor(lang string) labels {
	if l, ok := locales[lang]; ok {
		return l
	}
	return locales[LangEnglish]
}
