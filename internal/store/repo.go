package store

import (
	"context"
	"errors"

	"github.com/awais-webs67/Weather-and-news-bot---Saas-sub000/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist (or, for
// settings, exists but is disabled).
var ErrNotFound = errors.New("not found")

// Repo defines the storage operations the delivery subsystem consumes.
// The first group is the sweep's read/append surface; the second is the
// upsert surface the (out-of-scope) admin CRUD writes through, kept here so
// fixtures and tests exercise the same paths.
type Repo interface {
	// GetEnabledSetting returns the value of an enabled settings row.
	// Missing or disabled keys return ErrNotFound.
	GetEnabledSetting(ctx context.Context, key string) (string, error)

	// MatchSchedules returns the denormalized rows for every enabled
	// schedule whose delivery_time equals slot, owned by an active user
	// with a registered recipient for their channel. No duplicates.
	MatchSchedules(ctx context.Context, slot string) ([]domain.ScheduleRow, error)

	// GetUserWithLocation resolves one user and their saved location for
	// the on-demand send path. The location pointer is nil when the user
	// has not saved one.
	GetUserWithLocation(ctx context.Context, userID int64) (*domain.User, *domain.Location, error)

	// AppendMessage inserts one delivery audit row. Rows are never updated.
	AppendMessage(ctx context.Context, m *domain.Message) error

	UpsertUser(ctx context.Context, u *domain.User) error
	UpsertLocation(ctx context.Context, l *domain.Location) error
	UpsertSchedule(ctx context.Context, s *domain.Schedule) (int64, error)
	UpsertSetting(ctx context.Context, s *domain.Setting) error
	ListMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error)

	Close() error
}
