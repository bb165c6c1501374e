package domain

import "time"

type BranchStatus string

const (
	BranchStatusActive    BranchStatus = "ACTIVE"
	BranchStatusSuspended BranchStatus = "SUSPENDED"
)

type Branch struct {
	ID              int64
	Name            string
	Status          BranchStatus
	VisitCreditCost int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b Branch) AcceptsBookings() bool {
	return b.Status == BranchStatusActive
}

// ScheduleSlot is a display-only schedule row. Slot keeps the raw
// duration-style label from the backend (e.g. "8.00:00:00"); the hour
// shown to users is inferred from it, lossily, at render time.
type ScheduleSlot struct {
	BranchID int64
	Weekday  string
	Slot     string
	Activity string
}
