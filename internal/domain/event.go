package domain

import "time"

type Event struct {
	ID          int64
	Title       string
	PoojaType   string
	Date        time.Time
	StartTime   *string
	EndTime     *string
	Samagri     string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventDetail is an event together with its slot availability, as served
// by the date view.
type EventDetail struct {
	Event Event
	Slots []Slot
}

// MonthView is the month listing: active events plus the aggregate number
// of remaining slots per date. Counts are advisory and may lag concurrent
// reservations.
type MonthView struct {
	Events           []Event        `json:"events"`
	RemainingPerDate map[string]int `json:"remaining_per_date"`
}
