package domain

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription is a branch-scoped, plan-backed visit entitlement.
// RemainingVisits is decremented by exactly one per SUBSCRIPTION booking
// and never goes below zero.
type Subscription struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	BranchID        int64
	PlanName        string
	RemainingVisits int
	Status          SubscriptionStatus
	EndDate         time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Qualifies reports whether the subscription may pay for a visit:
// it must be ACTIVE and still have visits left. A drained subscription
// never qualifies regardless of status.
func (s Subscription) Qualifies() bool {
	return s.Status == SubscriptionStatusActive && s.RemainingVisits > 0
}
