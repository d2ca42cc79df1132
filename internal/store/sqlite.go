package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs the embedded migrations, and returns a
// repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error { return r.db.Close() }

// GetEnabledSetting returns the value of an enabled settings row.
func (r *SQLiteRepo) GetEnabledSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM settings
		WHERE key = ? AND enabled = 1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// MatchSchedules returns the denormalized rows for the given slot. The join
// filters to enabled schedules, active users, and users with a recipient for
// their channel. Locations are left-joined: rows without a saved location
// still match, with empty city/country.
func (r *SQLiteRepo) MatchSchedules(ctx context.Context, slot string) ([]domain.ScheduleRow, error) {
	if err := domain.ValidateSlot(slot); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.kind, u.id, u.chat_id, u.phone, u.channel,
		       COALESCE(l.city, ''), COALESCE(l.country, ''),
		       COALESCE(l.timezone, 'UTC'), COALESCE(l.language, 'en'),
		       COALESCE(l.unit, 'C')
		FROM schedules s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN locations l ON l.user_id = u.id
		WHERE s.enabled = 1
		  AND s.delivery_time = ?
		  AND u.status = ?
		  AND ((u.channel = ? AND u.chat_id != 0) OR (u.channel = ? AND u.phone != ''))
		ORDER BY s.id ASC`,
		slot, domain.StatusActive, domain.ChannelTelegram, domain.ChannelWhatsApp,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ScheduleRow
	for rows.Next() {
		var (
			row     domain.ScheduleRow
			kind    string
			chatID  int64
			phone   string
			channel string
		)
		if err := rows.Scan(
			&row.ScheduleID, &kind, &row.UserID, &chatID, &phone, &channel,
			&row.City, &row.Country, &row.Timezone, &row.Language, &row.Unit,
		); err != nil {
			return nil, err
		}
		row.Kind = domain.Kind(kind)
		row.Channel = domain.Channel(channel)
		u := domain.User{ChatID: chatID, Phone: phone, Channel: row.Channel}
		row.Recipient = u.Recipient()
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetUserWithLocation resolves a user and (if saved) their location.
func (r *SQLiteRepo) GetUserWithLocation(ctx context.Context, userID int64) (*domain.User, *domain.Location, error) {
	var (
		u         domain.User
		channel   string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, chat_id, phone, channel, plan, status, created_at
		FROM users WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.ChatID, &u.Phone, &channel, &u.Plan, &u.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	u.Channel = domain.Channel(channel)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()

	var l domain.Location
	err = r.db.QueryRowContext(ctx, `
		SELECT user_id, city, country, timezone, language, unit
		FROM locations WHERE user_id = ?`,
		userID,
	).Scan(&l.UserID, &l.City, &l.Country, &l.Timezone, &l.Language, &l.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return &u, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &u, &l, nil
}

// AppendMessage inserts one audit row. Append-only: there is no update path.
func (r *SQLiteRepo) AppendMessage(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, kind, content, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, string(m.Kind), m.Content, m.Status, m.Error, m.CreatedAt.Unix(),
	)
	return err
}

// ListMessages returns a user's most recent audit rows, newest first.
func (r *SQLiteRepo) ListMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, content, status, error, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Message
	for rows.Next() {
		var (
			m         domain.Message
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &kind, &m.Content, &m.Status, &m.Error, &createdAt); err != nil {
			return nil, err
		}
		m.Kind = domain.Kind(kind)
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, m)
	}
	return res, rows.Err()
}

// UpsertUser inserts or updates a user. A zero ID inserts and backfills the
// generated id into u.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if u.Channel == "" {
		u.Channel = domain.ChannelTelegram
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO users (chat_id, phone, channel, plan, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.ChatID, u.Phone, string(u.Channel), u.Plan, u.Status, u.CreatedAt.Unix(),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		u.ID = id
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, chat_id, phone, channel, plan, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			chat_id = excluded.chat_id,
			phone   = excluded.phone,
			channel = excluded.channel,
			plan    = excluded.plan,
			status  = excluded.status`,
		u.ID, u.ChatID, u.Phone, string(u.Channel), u.Plan, u.Status, u.CreatedAt.Unix(),
	)
	return err
}

// UpsertLocation saves a user's one preferred location.
func (r *SQLiteRepo) UpsertLocation(ctx context.Context, l *domain.Location) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (user_id, city, country, timezone, language, unit)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			city     = excluded.city,
			country  = excluded.country,
			timezone = excluded.timezone,
			language = excluded.language,
			unit     = excluded.unit`,
		l.UserID, l.City, l.Country, l.Timezone, l.Language, l.Unit,
	)
	return err
}

// UpsertSchedule saves a schedule, validating kind and delivery time at the
// persistence boundary. One schedule per (user, kind).
func (r *SQLiteRepo) UpsertSchedule(ctx context.Context, s *domain.Schedule) (int64, error) {
	if !s.Kind.Valid() {
		return 0, fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
	if err := domain.ValidateSlot(s.DeliveryTime); err != nil {
		return 0, err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (user_id, kind, delivery_time, enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET
			delivery_time = excluded.delivery_time,
			enabled       = excluded.enabled`,
		s.UserID, string(s.Kind), s.DeliveryTime, boolToInt(s.Enabled),
	)
	if err != nil {
		return 0, err
	}
	// LastInsertId is unreliable on conflict-update; read the row id back.
	var id int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM schedules WHERE user_id = ? AND kind = ?`,
		s.UserID, string(s.Kind),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// UpsertSetting saves a credential row.
func (r *SQLiteRepo) UpsertSetting(ctx context.Context, s *domain.Setting) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value   = excluded.value,
			enabled = excluded.enabled`,
		s.Key, s.Value, boolToInt(s.Enabled),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
