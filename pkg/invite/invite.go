// Package invite defines entity-owner-initiated solicitations to specific
// backers, mirroring interests with inverted initiation.
package invite

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the response state of an invite.
//
// PENDING -> {ACCEPTED, DECLINED, WITHDRAWN}; ACCEPTED -> CONVERTED.
// DECLINED, WITHDRAWN and CONVERTED are final.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusDeclined  Status = "DECLINED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusConverted Status = "CONVERTED"
)

// Terminal reports whether the invite is immutable.
func (s Status) Terminal() bool {
	return s == StatusDeclined || s == StatusWithdrawn || s == StatusConverted
}

// Invite is an owner-sent solicitation to back a campaign. The recipient
// may be identified by user id, email, or Canton party id; when none
// resolves to a known user the invite is still created but has no
// enforceable recipient identity until resolved.
type Invite struct {
	ID               string           `json:"id"`
	CampaignID       string           `json:"campaign_id"`
	SenderID         string           `json:"sender_id"`
	RecipientUserID  string           `json:"recipient_user_id,omitempty"`
	RecipientEmail   string           `json:"recipient_email,omitempty"`
	RecipientPartyID string           `json:"recipient_party_id,omitempty"`
	SuggestedAmount  *decimal.Decimal `json:"suggested_amount,omitempty"`
	Status           Status           `json:"status"`
	Message          string           `json:"message,omitempty"`
	RespondedAt      *time.Time       `json:"responded_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Resolved reports whether the invite has an enforceable recipient identity.
func (i *Invite) Resolved() bool {
	return i.RecipientUserID != ""
}
