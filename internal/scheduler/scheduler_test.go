package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/domain"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/format"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/store"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/weather"
	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/whatsapp"
)

// fakeRepo is an in-memory store.Repo for sweep tests.
type fakeRepo struct {
	settings map[string]string
	rows     map[string][]domain.ScheduleRow // slot -> rows
	users    map[int64]*domain.User
	locs     map[int64]*domain.Location
	messages []domain.Message
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		settings: map[string]string{},
		rows:     map[string][]domain.ScheduleRow{},
		users:    map[int64]*domain.User{},
		locs:     map[int64]*domain.Location{},
	}
}

func (f *fakeRepo) GetEnabledSetting(_ context.Context, key string) (string, error) {
	v, ok := f.settings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (f *fakeRepo) MatchSchedules(_ context.Context, slot string) ([]domain.ScheduleRow, error) {
	return f.rows[slot], nil
}

func (f *fakeRepo) GetUserWithLocation(_ context.Context, userID int64) (*domain.User, *domain.Location, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	return u, f.locs[userID], nil
}

func (f *fakeRepo) AppendMessage(_ context.Context, m *domain.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, u *domain.User) error         { f.users[u.ID] = u; return nil }
func (f *fakeRepo) UpsertLocation(_ context.Context, l *domain.Location) error { f.locs[l.UserID] = l; return nil }
func (f *fakeRepo) UpsertSchedule(_ context.Context, s *domain.Schedule) (int64, error) {
	return s.ID, nil
}
func (f *fakeRepo) UpsertSetting(_ context.Context, s *domain.Setting) error {
	f.settings[s.Key] = s.Value
	return nil
}
func (f *fakeRepo) ListMessages(_ context.Context, _ int64, _ int) ([]domain.Message, error) {
	return f.messages, nil
}
func (f *fakeRepo) Close() error { return nil }

// fakeWeather returns a canned result or error, and can panic on demand.
type fakeWeather struct {
	cur    *weather.Current
	err    error
	panics bool
	calls  int
}

func (f *fakeWeather) FetchCurrent(_ context.Context, _, city, country string) (*weather.Current, error) {
	f.calls++
	if f.panics {
		panic("weather provider blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	cur := *f.cur
	cur.City, cur.Country = city, country
	return &cur, nil
}

// fakeTelegram records sends and can fail per recipient.
type fakeTelegram struct {
	sent    []sentMsg
	failFor map[string]error
}

type sentMsg struct{ recipient, text string }

func (f *fakeTelegram) Send(_ context.Context, _, recipient, text string) error {
	if err, ok := f.failFor[recipient]; ok {
		return err
	}
	f.sent = append(f.sent, sentMsg{recipient, text})
	return nil
}

type fakeWhatsApp struct {
	sent []sentMsg
	err  error
}

func (f *fakeWhatsApp) Send(_ context.Context, creds whatsapp.Credentials, recipient, text string) error {
	if f.err != nil {
		return f.err
	}
	if !creds.Complete() {
		return errors.New("whatsapp: credentials not configured")
	}
	f.sent = append(f.sent, sentMsg{recipient, text})
	return nil
}

func clearSky() *weather.Current {
	return &weather.Current{
		Temperature: 15.2,
		FeelsLike:   14.8,
		TempMin:     13.0,
		TempMax:     17.1,
		Humidity:    60,
		Description: "clear sky",
		WindSpeed:   3.1,
		Clouds:      10,
	}
}

type fixture struct {
	repo *fakeRepo
	wx   *fakeWeather
	tg   *fakeTelegram
	wa   *fakeWhatsApp
	s    *Scheduler
}

// newFixture builds a scheduler with working credentials and a clock frozen
// at 07:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newFakeRepo(),
		wx:   &fakeWeather{cur: clearSky()},
		tg:   &fakeTelegram{failFor: map[string]error{}},
		wa:   &fakeWhatsApp{},
	}
	f.repo.settings[domain.SettingTelegramBotToken] = "bot-token"
	f.repo.settings[domain.SettingWeatherAPIKey] = "weather-key"
	f.s = New(f.repo, zap.NewNop(), f.wx, f.tg, f.wa, time.Second)
	f.s.now = func() time.Time { return time.Date(2025, time.May, 5, 7, 0, 30, 0, time.UTC) }
	return f
}

func weatherRow(userID int64) domain.ScheduleRow {
	return domain.ScheduleRow{
		ScheduleID: userID,
		UserID:     userID,
		Kind:       domain.KindWeatherMorning,
		Channel:    domain.ChannelTelegram,
		Recipient:  "100",
		City:       "London",
		Country:    "GB",
		Language:   "en",
		Unit:       "C",
	}
}

func TestRunSweep_ScenarioMorningWeather(t *testing.T) {
	f := newFixture(t)
	f.repo.rows["07:00"] = []domain.ScheduleRow{weatherRow(1)}

	f.s.RunSweep(context.Background())

	if len(f.tg.sent) != 1 {
		t.Fatalf("want 1 dispatch, got %d", len(f.tg.sent))
	}
	text := f.tg.sent[0].text
	for _, want := range []string{"Good Morning", "15.2°C", "☀️", "60%"} {
		if !strings.Contains(text, want) {
			t.Errorf("dispatched text missing %q:\n%s", want, text)
		}
	}
	if len(f.repo.messages) != 1 {
		t.Fatalf("want 1 message record, got %d", len(f.repo.messages))
	}
	m := f.repo.messages[0]
	if m.Status != domain.MessageDelivered || m.Content != text || m.Error != "" {
		t.Fatalf("record: %+v", m)
	}
}

func TestRunSweep_OneRecordPerRow(t *testing.T) {
	f := newFixture(t)
	row1 := weatherRow(1)
	row2 := weatherRow(2)
	row2.Recipient = "200"
	row3 := domain.ScheduleRow{
		ScheduleID: 3, UserID: 3, Kind: domain.KindNews,
		Channel: domain.ChannelTelegram, Recipient: "300", Language: "en",
	}
	f.tg.failFor["200"] = errors.New("telegram: chat not found")
	f.repo.rows["07:00"] = []domain.ScheduleRow{row1, row2, row3}

	f.s.RunSweep(context.Background())

	if len(f.repo.messages) != 3 {
		t.Fatalf("want exactly one record per row, got %d", len(f.repo.messages))
	}
	byUser := map[int64]domain.Message{}
	for _, m := range f.repo.messages {
		byUser[m.UserID] = m
	}
	if byUser[1].Status != domain.MessageDelivered {
		t.Errorf("row1: %+v", byUser[1])
	}
	m2 := byUser[2]
	if m2.Status != domain.MessageFailed || m2.Content != "" || !strings.Contains(m2.Error, "chat not found") {
		t.Errorf("row2 should be failed with captured error and empty content: %+v", m2)
	}
	if byUser[3].Status != domain.MessageDelivered {
		t.Errorf("row3: %+v", byUser[3])
	}
}

func TestRunSweep_MissingCredentialsAbortsSweep(t *testing.T) {
	for _, missing := range []string{domain.SettingTelegramBotToken, domain.SettingWeatherAPIKey} {
		f := newFixture(t)
		delete(f.repo.settings, missing)
		f.repo.rows["07:00"] = []domain.ScheduleRow{weatherRow(1)}

		f.s.RunSweep(context.Background())

		if len(f.repo.messages) != 0 {
			t.Errorf("missing %s: want zero records, got %d", missing, len(f.repo.messages))
		}
		if len(f.tg.sent) != 0 || f.wx.calls != 0 {
			t.Errorf("missing %s: want zero provider calls, got %d sends / %d fetches",
				missing, len(f.tg.sent), f.wx.calls)
		}
	}
}

func TestRunSweep_MissingLocationSendsWarning(t *testing.T) {
	f := newFixture(t)
	row := weatherRow(1)
	row.City, row.Country = "", ""
	f.repo.rows["07:00"] = []domain.ScheduleRow{row}

	f.s.RunSweep(context.Background())

	if f.wx.calls != 0 {
		t.Fatalf("weather provider should not be called, got %d calls", f.wx.calls)
	}
	if len(f.tg.sent) != 1 || f.tg.sent[0].text != format.LocationWarning {
		t.Fatalf("want location warning dispatch, got %+v", f.tg.sent)
	}
	if len(f.repo.messages) != 1 || f.repo.messages[0].Status != domain.MessageDelivered {
		t.Fatalf("records: %+v", f.repo.messages)
	}
}

func TestRunSweep_ProviderFailureSendsWarning(t *testing.T) {
	f := newFixture(t)
	f.wx.err = errors.New("city not found")
	f.repo.rows["07:00"] = []domain.ScheduleRow{weatherRow(1)}

	f.s.RunSweep(context.Background())

	if len(f.tg.sent) != 1 {
		t.Fatalf("want 1 dispatch, got %d", len(f.tg.sent))
	}
	text := f.tg.sent[0].text
	if !strings.Contains(text, "Weather update failed") || !strings.Contains(text, "city not found") {
		t.Fatalf("warning text: %q", text)
	}
	// Dispatch succeeded, so the record is delivered: only the dispatch
	// outcome gates the status.
	if len(f.repo.messages) != 1 || f.repo.messages[0].Status != domain.MessageDelivered {
		t.Fatalf("records: %+v", f.repo.messages)
	}
}

func TestRunSweep_NewsPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.repo.rows["07:00"] = []domain.ScheduleRow{{
		ScheduleID: 1, UserID: 1, Kind: domain.KindNews,
		Channel: domain.ChannelTelegram, Recipient: "100", Language: "en",
	}}

	f.s.RunSweep(context.Background())

	if len(f.tg.sent) != 1 || f.tg.sent[0].text != format.NewsPlaceholder {
		t.Fatalf("want static news placeholder, got %+v", f.tg.sent)
	}
	if f.wx.calls != 0 {
		t.Fatalf("news rows must not hit the weather provider")
	}
}

func TestRunSweep_RowPanicDoesNotAbortSweep(t *testing.T) {
	f := newFixture(t)
	f.wx.panics = true
	row1 := weatherRow(1)
	row2 := domain.ScheduleRow{
		ScheduleID: 2, UserID: 2, Kind: domain.KindNews,
		Channel: domain.ChannelTelegram, Recipient: "200", Language: "en",
	}
	f.repo.rows["07:00"] = []domain.ScheduleRow{row1, row2}

	f.s.RunSweep(context.Background())

	if len(f.repo.messages) != 2 {
		t.Fatalf("want 2 records, got %d", len(f.repo.messages))
	}
	byUser := map[int64]domain.Message{}
	for _, m := range f.repo.messages {
		byUser[m.UserID] = m
	}
	m1 := byUser[1]
	if m1.Status != domain.MessageFailed || !strings.Contains(m1.Error, "panic") || m1.Content != "" {
		t.Errorf("panicked row record: %+v", m1)
	}
	if byUser[2].Status != domain.MessageDelivered {
		t.Errorf("second row should still deliver: %+v", byUser[2])
	}
}

func TestRunSweep_WhatsAppRouting(t *testing.T) {
	f := newFixture(t)
	f.repo.settings[domain.SettingTwilioAccountSID] = "AC123"
	f.repo.settings[domain.SettingTwilioAuthToken] = "tok"
	f.repo.settings[domain.SettingTwilioWhatsAppFrom] = "+14155550000"
	row := weatherRow(1)
	row.Channel = domain.ChannelWhatsApp
	row.Recipient = "+447700900123"
	f.repo.rows["07:00"] = []domain.ScheduleRow{row}

	f.s.RunSweep(context.Background())

	if len(f.wa.sent) != 1 || f.wa.sent[0].recipient != "+447700900123" {
		t.Fatalf("whatsapp dispatch: %+v", f.wa.sent)
	}
	if len(f.tg.sent) != 0 {
		t.Fatalf("telegram should not be used for whatsapp rows")
	}
}

func TestRunSweep_WhatsAppWithoutTwilioFailsRowOnly(t *testing.T) {
	f := newFixture(t)
	waRow := weatherRow(1)
	waRow.Channel = domain.ChannelWhatsApp
	waRow.Recipient = "+447700900123"
	tgRow := weatherRow(2)
	tgRow.Recipient = "200"
	f.repo.rows["07:00"] = []domain.ScheduleRow{waRow, tgRow}

	f.s.RunSweep(context.Background())

	if len(f.repo.messages) != 2 {
		t.Fatalf("want 2 records, got %d", len(f.repo.messages))
	}
	byUser := map[int64]domain.Message{}
	for _, m := range f.repo.messages {
		byUser[m.UserID] = m
	}
	if byUser[1].Status != domain.MessageFailed || !strings.Contains(byUser[1].Error, "credentials") {
		t.Errorf("whatsapp row: %+v", byUser[1])
	}
	if byUser[2].Status != domain.MessageDelivered {
		t.Errorf("telegram row should continue: %+v", byUser[2])
	}
}

func TestRunSweep_NoRowsNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.s.RunSweep(context.Background())
	if len(f.repo.messages) != 0 || len(f.tg.sent) != 0 || f.wx.calls != 0 {
		t.Fatalf("empty slot must have no side effects")
	}
}

func TestSendNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unknown user.
	if _, err := f.s.SendNow(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown user: want ErrNotFound, got %v", err)
	}

	// No messaging identifier.
	f.repo.users[1] = &domain.User{ID: 1, Channel: domain.ChannelTelegram}
	if _, err := f.s.SendNow(ctx, 1); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("no recipient: got %v", err)
	}

	// No location.
	f.repo.users[1].ChatID = 100
	if _, err := f.s.SendNow(ctx, 1); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("no location: got %v", err)
	}

	// Missing credentials.
	f.repo.locs[1] = &domain.Location{UserID: 1, City: "London", Country: "GB", Language: "en", Unit: "F"}
	delete(f.repo.settings, domain.SettingWeatherAPIKey)
	if _, err := f.s.SendNow(ctx, 1); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("missing credential: got %v", err)
	}

	// Happy path: formatted per the user's unit, dispatched, no record.
	f.repo.settings[domain.SettingWeatherAPIKey] = "weather-key"
	text, err := f.s.SendNow(ctx, 1)
	if err != nil {
		t.Fatalf("send now: %v", err)
	}
	if !strings.Contains(text, "59.4°F") {
		t.Errorf("unit preference ignored:\n%s", text)
	}
	if len(f.tg.sent) != 1 || f.tg.sent[0].text != text {
		t.Errorf("dispatch: %+v", f.tg.sent)
	}
	if len(f.repo.messages) != 0 {
		t.Errorf("on-demand send must not write message records, got %d", len(f.repo.messages))
	}
}
