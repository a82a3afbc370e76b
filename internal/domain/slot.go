package domain

import "time"

type Slot struct {
	ID          int64
	EventID     int64
	StartTime   string
	EndTime     *string
	Capacity    int
	BookedCount int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining is derived, never stored.
func (s Slot) Remaining() int {
	rem := s.Capacity - s.BookedCount
	if rem < 0 {
		return 0
	}
	return rem
}
