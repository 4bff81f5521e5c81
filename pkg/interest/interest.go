// Package interest defines unsolicited backer pledges awaiting
// entity-owner review before they can become backings.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the review state of an interest.
//
// PENDING -> {ACCEPTED, DECLINED, WITHDRAWN}; ACCEPTED -> {WITHDRAWN,
// CONVERTED}. DECLINED, WITHDRAWN and CONVERTED are final.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusDeclined  Status = "DECLINED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusConverted Status = "CONVERTED"
)

// Terminal reports whether the interest is immutable.
func (s Status) Terminal() bool {
	return s == StatusDeclined || s == StatusWithdrawn || s == StatusConverted
}

// Withdrawable reports whether the submitting user may still withdraw.
func (s Status) Withdrawable() bool {
	return s == StatusPending || s == StatusAccepted
}

// Interest is an unsolicited pledge against an open campaign. At most one
// non-deleted interest exists per (UserID, CampaignID).
type Interest struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	CampaignID   string          `json:"campaign_id"`
	PledgeAmount decimal.Decimal `json:"pledge_amount"`
	Status       Status          `json:"status"`
	Message      string          `json:"message,omitempty"`
	ReviewNote   string          `json:"review_note,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
