// Package backing defines recorded funding commitments and their
// lock/unlock lifecycle. Backings are the only records that feed the
// derived entity and campaign aggregates.
package backing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a backing.
//
// PLEDGED -> LOCKED -> UNLOCKING -> WITHDRAWN, with UNLOCKING reachable
// from PLEDGED as well. WITHDRAWN is final. Only PLEDGED and LOCKED
// backings count toward aggregates.
type Status string

const (
	StatusPledged   Status = "PLEDGED"
	StatusLocked    Status = "LOCKED"
	StatusUnlocking Status = "UNLOCKING"
	StatusWithdrawn Status = "WITHDRAWN"
)

// Active reports whether the backing counts toward entity and campaign
// current amounts.
func (s Status) Active() bool {
	return s == StatusPledged || s == StatusLocked
}

// Backing is a recorded funding commitment from a user to an entity and,
// optionally, one of its campaigns. Immutable once WITHDRAWN.
type Backing struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	EntityID          string          `json:"entity_id"`
	CampaignID        string          `json:"campaign_id,omitempty"` // empty for entity-level backings
	Amount            decimal.Decimal `json:"amount"`
	Status            Status          `json:"status"`
	Origin            Origin          `json:"origin"`
	UnlockRequestedAt *time.Time      `json:"unlock_requested_at,omitempty"`
	UnlockEffectiveAt *time.Time      `json:"unlock_effective_at,omitempty"`
	UnlockedAt        *time.Time      `json:"unlocked_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
