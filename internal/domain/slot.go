package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSlot = errors.New("invalid slot")

// Slot truncates t to minute granularity in UTC and renders it as the
// zero-padded "HH:MM" string the matcher compares delivery times against.
func Slot(t time.Time) string {
	return t.UTC().Format("15:04")
}

// ValidateSlot checks that s is a zero-padded 24-hour "HH:MM" string.
// Used at the persistence boundary when schedules are saved.
func ValidateSlot(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidSlot, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("%w: %q (bad hour)", ErrInvalidSlot, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return fmt.Errorf("%w: %q (bad minute)", ErrInvalidSlot, s)
	}
	return nil
}
