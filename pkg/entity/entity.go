// Package entity defines the registered entities (featured apps and
// validators) that can run backing campaigns, and their claim lifecycle.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type identifies the kind of registered entity.
type Type string

const (
	TypeFeaturedApp Type = "FEATURED_APP"
	TypeValidator   Type = "VALIDATOR"
)

// Valid reports whether t is a known entity type.
func (t Type) Valid() bool {
	return t == TypeFeaturedApp || t == TypeValidator
}

// ClaimStatus is the claim state of an entity.
//
// UNCLAIMED -> CLAIMED via a verified claim, or direct entry at
// SELF_REGISTERED when the owner is supplied at creation time.
// PENDING_CLAIM is an optional intermediate awaiting external verification.
// There is no path back to UNCLAIMED.
type ClaimStatus string

const (
	ClaimUnclaimed      ClaimStatus = "UNCLAIMED"
	ClaimPending        ClaimStatus = "PENDING_CLAIM"
	ClaimClaimed        ClaimStatus = "CLAIMED"
	ClaimSelfRegistered ClaimStatus = "SELF_REGISTERED"
)

// Editable reports whether the claim status unlocks edit rights.
func (s ClaimStatus) Editable() bool {
	return s == ClaimClaimed || s == ClaimSelfRegistered
}

// Claimable reports whether a claim may still be made from this status.
func (s ClaimStatus) Claimable() bool {
	return s == ClaimUnclaimed || s == ClaimPending
}

// Entity represents a featured app or validator registered on the platform.
// CurrentAmount is derived from active backings and never hand-edited.
type Entity struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	PartyID       string          `json:"party_id"`
	ClaimStatus   ClaimStatus     `json:"claim_status"`
	OwnerID       string          `json:"owner_id,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	ClaimedAt     *time.Time      `json:"claimed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OwnedBy reports whether userID is the entity's owner.
func (e *Entity) OwnedBy(userID string) bool {
	return e.OwnerID != "" && e.OwnerID == userID
}
