// Package fundingstore persists the funding-commitment lifecycle records
// (entities, campaigns, interests, invites, backings) in PostgreSQL.
//
// All cross-record writes (backing creation converting an interest or
// invite, aggregate recomputation) run inside a single transaction here;
// no other package writes these tables directly.
package fundingstore

import (
	"context"
	"errors"
	"time"

	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/interest"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

var (
	// ErrEntityNotFound is returned when an entity lookup finds no matching record.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrCampaignNotFound is returned when a campaign lookup finds no matching record.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrInterestNotFound is returned when an interest lookup finds no matching record.
	ErrInterestNotFound = errors.New("interest not found")
	// ErrInviteNotFound is returned when an invite lookup finds no matching record.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrBackingNotFound is returned when a backing lookup finds no matching record.
	ErrBackingNotFound = errors.New("backing not found")
	// ErrDuplicateInterest is returned when a second interest is registered
	// for the same (user, campaign) pair.
	ErrDuplicateInterest = errors.New("interest already exists for user and campaign")
	// ErrDuplicateParty is returned when an entity is created with a party id
	// that is already registered.
	ErrDuplicateParty = errors.New("entity already exists for party")
	// ErrSourceNotConvertible is returned when a backing conversion references
	// an interest or invite that is not in ACCEPTED status.
	ErrSourceNotConvertible = errors.New("conversion source is not accepted")
	// ErrStaleStatus is returned when a status transition finds the record in
	// a status the transition is not legal from.
	ErrStaleStatus = errors.New("record status does not allow transition")
	// ErrSerialization is returned when a transaction lost a row-lock race and
	// should be retried by the caller.
	ErrSerialization = errors.New("transaction serialization failure")
)

// EntityStore owns entity records and their claim state.
type EntityStore interface {
	CreateEntity(ctx context.Context, e *entity.Entity) error
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	GetEntityByPartyID(ctx context.Context, partyID string) (*entity.Entity, error)
	ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
	// ClaimEntity sets claim status, owner and claim time in one write. It
	// fails with ErrStaleStatus if the entity is no longer claimable.
	ClaimEntity(ctx context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error)
	UpdateEntity(ctx context.Context, e *entity.Entity) error
	// RecomputeEntityAmount re-derives current_amount from active backings
	// under a row lock and returns the new sum as a string.
	RecomputeEntityAmount(ctx context.Context, id string) (string, error)
}

// CampaignStore owns campaign records and their publish/close state.
type CampaignStore interface {
	CreateCampaign(ctx context.Context, c *campaign.Campaign) error
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
	// TransitionCampaign moves a campaign from one status to another,
	// failing with ErrStaleStatus when the current status differs from from.
	TransitionCampaign(ctx context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error)
	// CloseCampaign sets status CLOSED from any non-terminal status.
	CloseCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	// CloseDueCampaigns closes OPEN campaigns whose ends_at has passed and
	// returns the ids it closed.
	CloseDueCampaigns(ctx context.Context, now time.Time) ([]string, error)
	RecomputeCampaignAmount(ctx context.Context, id string) (string, error)
}

// InterestStore owns interest records.
type InterestStore interface {
	CreateInterest(ctx context.Context, i *interest.Interest) error
	GetInterest(ctx context.Context, id string) (*interest.Interest, error)
	GetInterestByUserAndCampaign(ctx context.Context, userID, campaignID string) (*interest.Interest, error)
	ListInterestsByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error)
	// TransitionInterest moves an interest from one status to another,
	// recording the review note and time when provided.
	TransitionInterest(ctx context.Context, id string, from []interest.Status, to interest.Status, note string, at time.Time) (*interest.Interest, error)
}

// InviteStore owns campaign invite records.
type InviteStore interface {
	CreateInvite(ctx context.Context, inv *invite.Invite) error
	GetInvite(ctx context.Context, id string) (*invite.Invite, error)
	ListInvitesByCampaign(ctx context.Context, campaignID string) ([]*invite.Invite, error)
	TransitionInvite(ctx context.Context, id string, from []invite.Status, to invite.Status, at time.Time) (*invite.Invite, error)
}

// BackingStore owns the backing ledger.
type BackingStore interface {
	// CreateBacking atomically inserts the backing, flips its origin record
	// to CONVERTED (which must be ACCEPTED), and recomputes the entity and
	// campaign aggregates, all in one transaction.
	CreateBacking(ctx context.Context, b *backing.Backing) error
	GetBacking(ctx context.Context, id string) (*backing.Backing, error)
	ListBackings(ctx context.Context, opts ...BackingQueryOption) ([]*backing.Backing, error)
	// TransitionBacking moves a backing between statuses, applying the given
	// timestamp columns and recomputing aggregates when the transition
	// changes whether the backing counts toward them.
	TransitionBacking(ctx context.Context, id string, from []backing.Status, to backing.Status, times BackingTimes) (*backing.Backing, error)
	// ListUnlockingReady returns backings in UNLOCKING whose unlock has
	// become effective at or before now.
	ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error)
}

// Store is the full persistence surface of the funding subsystem.
type Store interface {
	EntityStore
	CampaignStore
	InterestStore
	InviteStore
	BackingStore
}

// BackingTimes carries the optional timestamp writes of a backing transition.
type BackingTimes struct {
	UnlockRequestedAt *time.Time
	UnlockEffectiveAt *time.Time
	UnlockedAt        *time.Time
}

// BackingQueryOptions defines filters for listing backings
type BackingQueryOptions struct {
	UserID     *string
	EntityID   *string
	CampaignID *string
	Statuses   []backing.Status
}

// BackingQueryOption is a functional option for querying backings
type BackingQueryOption func(*BackingQueryOptions)

// WithUserID filters backings by backer
func WithUserID(userID string) BackingQueryOption {
	return func(opts *BackingQueryOptions) {
		opts.UserID = &userID
	}
}

// WithEntityID filters backings by entity
func WithEntityID(entityID string) BackingQueryOption {
	return func(opts *BackingQueryOptions) {
		opts.EntityID = &entityID
	}
}

// WithCampaignID filters backings by campaign
func WithCampaignID(campaignID string) BackingQueryOption {
	return func(opts *BackingQueryOptions) {
		opts.CampaignID = &campaignID
	}
}

// WithStatuses filters backings by status
func WithStatuses(statuses ...backing.Status) BackingQueryOption {
	return func(opts *BackingQueryOptions) {
		opts.Statuses = statuses
	}
}
