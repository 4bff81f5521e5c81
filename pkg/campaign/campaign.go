// Package campaign defines time-boxed backing campaigns scoped to an entity.
package campaign

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the publish/close state of a campaign.
//
// DRAFT -> OPEN -> {SELECTING, FUNDED, CLOSED, CANCELLED}. Publishing is
// irreversible; only an OPEN campaign accepts new interests.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusOpen      Status = "OPEN"
	StatusSelecting Status = "SELECTING"
	StatusFunded    Status = "FUNDED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Campaign is a time-boxed funding round belonging to exactly one entity.
// CurrentAmount is derived from active backings and never hand-edited.
type Campaign struct {
	ID              string           `json:"id"`
	EntityID        string           `json:"entity_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Status          Status           `json:"status"`
	TargetAmount    decimal.Decimal  `json:"target_amount"`
	CurrentAmount   decimal.Decimal  `json:"current_amount"`
	MinContribution *decimal.Decimal `json:"min_contribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"max_contribution,omitempty"`
	StartsAt        *time.Time       `json:"starts_at,omitempty"`
	EndsAt          *time.Time       `json:"ends_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// AcceptsPledge reports whether amount satisfies the campaign's
// contribution bounds. Unset bounds do not constrain.
func (c *Campaign) AcceptsPledge(amount decimal.Decimal) bool {
	if c.MinContribution != nil && amount.LessThan(*c.MinContribution) {
		return false
	}
	if c.MaxContribution != nil && amount.GreaterThan(*c.MaxContribution) {
		return false
	}
	return true
}
