package cache

import "time"

// DefaultSlidingWindow is the validity window for derived indicator entries.
const DefaultSlidingWindow = 30 * time.Minute

// Policy decides whether a cache entry created at some instant is still
// valid now. The variants are closed: an entry is either durable for the
// creation calendar day or held for a sliding duration.
type Policy interface {
	Valid(createdAt, now time.Time) bool

	policy()
}

// CalendarDay keeps an entry valid while the process-local calendar date of
// its creation equals today. An entry created yesterday at 23:59 is stale at
// 00:00 regardless of age.
type CalendarDay struct{}

func (CalendarDay) policy() {}

func (CalendarDay) Valid(createdAt, now time.Time) bool {
	y1, m1, d1 := createdAt.Date()
	y2, m2, d2 := now.Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}

// SlidingWindow keeps an entry valid for a fixed duration from creation.
type SlidingWindow struct {
	Window time.Duration
}

func (SlidingWindow) policy() {}

func (s SlidingWindow) Valid(createdAt, now time.Time) bool {
	return now.Sub(createdAt) < s.Window
}

// Entry pairs a cached value with its creation time and validity policy.
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
	Policy    Policy
}

// Valid reports whether the entry is still usable at the given instant.
func (e Entry[T]) Valid(now time.Time) bool {
	return e.Policy.Valid(e.CreatedAt, now)
}
