// Package models defines the subscription tracker's data models shared by the
// cache, remote store, and analytics layers.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cycle is the billing cycle of a subscription.
type Cycle string

const (
	CycleMonthly  Cycle = "monthly"
	CycleAnnually Cycle = "annually"
)

// Status is the lifecycle status of a subscription.
type Status string

const (
	StatusActive Status = "active"
	StatusTrial  Status = "trial"
)

// Category is the spending category of a subscription. The set is fixed;
// aggregates always report every category, including zero-valued ones.
type Category string

const (
	CategorySoftware      Category = "software"
	CategoryShopping      Category = "shopping"
	CategoryDesign        Category = "design"
	CategoryStorage       Category = "storage"
	CategoryEntertainment Category = "entertainment"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategorySoftware,
		CategoryShopping,
		CategoryDesign,
		CategoryStorage,
		CategoryEntertainment,
	}
}

// Subscription is a single recurring subscription owned by one user.
type Subscription struct {
	// ID is a globally unique identifier, assigned at creation, immutable.
	ID string

	// OwnerKey selects the storage partition: a remote identity id when the
	// user is federated, or a local username otherwise.
	OwnerKey string

	// Name is the display name of the service. Never empty.
	Name string

	// Cost is the amount charged per cycle. Always positive,
	// currency-agnostic.
	Cost decimal.Decimal

	// RenewalDate is a calendar date: the time-of-day component is always
	// midnight UTC (see NormalizeDate).
	RenewalDate time.Time

	Cycle    Cycle
	Status   Status
	Category Category

	// CreatedAt/UpdatedAt are assigned by the remote store on persist.
	// Zero in the local-only path.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeDate truncates t to midnight UTC. Renewal dates are stored and
// compared in this form so that two timestamps on the same calendar day
// are equal.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New constructs a Subscription with a fresh id and a normalized renewal
// date. The result is not validated; call Validate before persisting a
// newly created subscription.
func New(ownerKey, name string, cost decimal.Decimal, renewal time.Time, cycle Cycle, status Status, category Category) *Subscription {
	return &Subscription{
		ID:          uuid.NewString(),
		OwnerKey:    ownerKey,
		Name:        name,
		Cost:        cost,
		RenewalDate: NormalizeDate(renewal),
		Cycle:       cycle,
		Status:      status,
		Category:    category,
	}
}

// Validate checks creation-time invariants: CheckFields plus a renewal date
// strictly in the future relative to now. The future check applies at
// creation only; stored subscriptions may legitimately hold past renewal
// dates once they have come due, and are never re-validated on read or edit.
func (s *Subscription) Validate(now time.Time) error {
	if err := s.CheckFields(); err != nil {
		return err
	}
	if !NormalizeDate(s.RenewalDate).After(NormalizeDate(now)) {
		return ErrRenewalNotFuture
	}
	return nil
}

// CheckFields validates the date-independent invariants: non-empty name,
// positive cost, known enum values.
func (s *Subscription) CheckFields() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Cost.IsPositive() {
		return ErrNonPositiveCost
	}
	switch s.Cycle {
	case CycleMonthly, CycleAnnually:
	default:
		return fmt.Errorf("%w: cycle %q", ErrUnknownEnum, s.Cycle)
	}
	switch s.Status {
	case StatusActive, StatusTrial:
	default:
		return fmt.Errorf("%w: status %q", ErrUnknownEnum, s.Status)
	}
	switch s.Category {
	case CategorySoftware, CategoryShopping, CategoryDesign, CategoryStorage, CategoryEntertainment:
	default:
		return fmt.Errorf("%w: category %q", ErrUnknownEnum, s.Category)
	}
	return nil
}
