package fundingstore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/interest"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

// EntityDao is a data access object that maps directly to the 'entities' table in PostgreSQL.
type EntityDao struct {
	bun.BaseModel `bun:"table:entities,alias:e"`
	ID            string     `bun:"id,pk,type:varchar(36)"`
	Type          string     `bun:"type,notnull,type:varchar(32)"`
	Name          string     `bun:"name,notnull,type:varchar(255)"`
	Description   *string    `bun:"description,type:text"`
	PartyID       string     `bun:"party_id,unique,notnull,type:varchar(255)"`
	ClaimStatus   string     `bun:"claim_status,notnull,type:varchar(32)"`
	OwnerID       *string    `bun:"owner_id,type:varchar(36)"`
	TargetAmount  string     `bun:"target_amount,notnull,type:numeric(38,10)"`
	CurrentAmount string     `bun:"current_amount,notnull,default:0,type:numeric(38,10)"`
	ClaimedAt     *time.Time `bun:"claimed_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// CampaignDao is a data access object that maps directly to the 'campaigns' table in PostgreSQL.
type CampaignDao struct {
	bun.BaseModel   `bun:"table:campaigns,alias:c"`
	ID              string     `bun:"id,pk,type:varchar(36)"`
	EntityID        string     `bun:"entity_id,notnull,type:varchar(36)"`
	Name            string     `bun:"name,notnull,type:varchar(255)"`
	Description     *string    `bun:"description,type:text"`
	Status          string     `bun:"status,notnull,type:varchar(32)"`
	TargetAmount    string     `bun:"target_amount,notnull,type:numeric(38,10)"`
	CurrentAmount   string     `bun:"current_amount,notnull,default:0,type:numeric(38,10)"`
	MinContribution *string    `bun:"min_contribution,type:numeric(38,10)"`
	MaxContribution *string    `bun:"max_contribution,type:numeric(38,10)"`
	StartsAt        *time.Time `bun:"starts_at"`
	EndsAt          *time.Time `bun:"ends_at"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// InterestDao is a data access object that maps directly to the 'interests' table in PostgreSQL.
type InterestDao struct {
	bun.BaseModel `bun:"table:interests,alias:i"`
	ID            string     `bun:"id,pk,type:varchar(36)"`
	UserID        string     `bun:"user_id,notnull,type:varchar(36)"`
	CampaignID    string     `bun:"campaign_id,notnull,type:varchar(36)"`
	PledgeAmount  string     `bun:"pledge_amount,notnull,type:numeric(38,10)"`
	Status        string     `bun:"status,notnull,type:varchar(32)"`
	Message       *string    `bun:"message,type:text"`
	ReviewNote    *string    `bun:"review_note,type:text"`
	ReviewedAt    *time.Time `bun:"reviewed_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// InviteDao is a data access object that maps directly to the 'campaign_invites' table in PostgreSQL.
type InviteDao struct {
	bun.BaseModel    `bun:"table:campaign_invites,alias:ci"`
	ID               string     `bun:"id,pk,type:varchar(36)"`
	CampaignID       string     `bun:"campaign_id,notnull,type:varchar(36)"`
	SenderID         string     `bun:"sender_id,notnull,type:varchar(36)"`
	RecipientUserID  *string    `bun:"recipient_user_id,type:varchar(36)"`
	RecipientEmail   *string    `bun:"recipient_email,type:varchar(255)"`
	RecipientPartyID *string    `bun:"recipient_party_id,type:varchar(255)"`
	SuggestedAmount  *string    `bun:"suggested_amount,type:numeric(38,10)"`
	Status           string     `bun:"status,notnull,type:varchar(32)"`
	Message          *string    `bun:"message,type:text"`
	RespondedAt      *time.Time `bun:"responded_at"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// BackingDao is a data access object that maps directly to the 'backings' table in PostgreSQL.
type BackingDao struct {
	bun.BaseModel     `bun:"table:backings,alias:b"`
	ID                string     `bun:"id,pk,type:varchar(36)"`
	UserID            string     `bun:"user_id,notnull,type:varchar(36)"`
	EntityID          string     `bun:"entity_id,notnull,type:varchar(36)"`
	CampaignID        *string    `bun:"campaign_id,type:varchar(36)"`
	Amount            string     `bun:"amount,notnull,type:numeric(38,10)"`
	Status            string     `bun:"status,notnull,type:varchar(32)"`
	SourceInterestID  *string    `bun:"source_interest_id,type:varchar(36)"`
	SourceInviteID    *string    `bun:"source_invite_id,type:varchar(36)"`
	UnlockRequestedAt *time.Time `bun:"unlock_requested_at"`
	UnlockEffectiveAt *time.Time `bun:"unlock_effective_at"`
	UnlockedAt        *time.Time `bun:"unlocked_at"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func decPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDec(s, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s value %q: %w", column, s, err)
	}
	return d, nil
}

func parseDecPtr(p *string, column string) (*decimal.Decimal, error) {
	if p == nil {
		return nil, nil
	}
	d, err := parseDec(*p, column)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// toEntityDao converts an entity.Entity to EntityDao.
func toEntityDao(e *entity.Entity) *EntityDao {
	return &EntityDao{
		ID:            e.ID,
		Type:          string(e.Type),
		Name:          e.Name,
		Description:   strPtr(e.Description),
		PartyID:       e.PartyID,
		ClaimStatus:   string(e.ClaimStatus),
		OwnerID:       strPtr(e.OwnerID),
		TargetAmount:  e.TargetAmount.String(),
		CurrentAmount: e.CurrentAmount.String(),
		ClaimedAt:     e.ClaimedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// toEntity converts an EntityDao to entity.Entity.
func toEntity(dao *EntityDao) (*entity.Entity, error) {
	target, err := parseDec(dao.TargetAmount, "target_amount")
	if err != nil {
		return nil, err
	}
	current, err := parseDec(dao.CurrentAmount, "current_amount")
	if err != nil {
		return nil, err
	}

	return &entity.Entity{
		ID:            dao.ID,
		Type:          entity.Type(dao.Type),
		Name:          dao.Name,
		Description:   strVal(dao.Description),
		PartyID:       dao.PartyID,
		ClaimStatus:   entity.ClaimStatus(dao.ClaimStatus),
		OwnerID:       strVal(dao.OwnerID),
		TargetAmount:  target,
		CurrentAmount: current,
		ClaimedAt:     dao.ClaimedAt,
		CreatedAt:     dao.CreatedAt,
		UpdatedAt:     dao.UpdatedAt,
	}, nil
}

// toCampaignDao converts a campaign.Campaign to CampaignDao.
func toCampaignDao(c *campaign.Campaign) *CampaignDao {
	return &CampaignDao{
		ID:              c.ID,
		EntityID:        c.EntityID,
		Name:            c.Name,
		Description:     strPtr(c.Description),
		Status:          string(c.Status),
		TargetAmount:    c.TargetAmount.String(),
		CurrentAmount:   c.CurrentAmount.String(),
		MinContribution: decPtr(c.MinContribution),
		MaxContribution: decPtr(c.MaxContribution),
		StartsAt:        c.StartsAt,
		EndsAt:          c.EndsAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// toCampaign converts a CampaignDao to campaign.Campaign.
func toCampaign(dao *CampaignDao) (*campaign.Campaign, error) {
	target, err := parseDec(dao.TargetAmount, "target_amount")
	if err != nil {
		return nil, err
	}
	current, err := parseDec(dao.CurrentAmount, "current_amount")
	if err != nil {
		return nil, err
	}
	minC, err := parseDecPtr(dao.MinContribution, "min_contribution")
	if err != nil {
		return nil, err
	}
	maxC, err := parseDecPtr(dao.MaxContribution, "max_contribution")
	if err != nil {
		return nil, err
	}

	return &campaign.Campaign{
		ID:              dao.ID,
		EntityID:        dao.EntityID,
		Name:            dao.Name,
		Description:     strVal(dao.Description),
		Status:          campaign.Status(dao.Status),
		TargetAmount:    target,
		CurrentAmount:   current,
		MinContribution: minC,
		MaxContribution: maxC,
		StartsAt:        dao.StartsAt,
		EndsAt:          dao.EndsAt,
		CreatedAt:       dao.CreatedAt,
		UpdatedAt:       dao.UpdatedAt,
	}, nil
}

// toInterestDao converts an interest.Interest to InterestDao.
func toInterestDao(i *interest.Interest) *InterestDao {
	return &InterestDao{
		ID:           i.ID,
		UserID:       i.UserID,
		CampaignID:   i.CampaignID,
		PledgeAmount: i.PledgeAmount.String(),
		Status:       string(i.Status),
		Message:      strPtr(i.Message),
		ReviewNote:   strPtr(i.ReviewNote),
		ReviewedAt:   i.ReviewedAt,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// toInterest converts an InterestDao to interest.Interest.
func toInterest(dao *InterestDao) (*interest.Interest, error) {
	pledge, err := parseDec(dao.PledgeAmount, "pledge_amount")
	if err != nil {
		return nil, err
	}

	return &interest.Interest{
		ID:           dao.ID,
		UserID:       dao.UserID,
		CampaignID:   dao.CampaignID,
		PledgeAmount: pledge,
		Status:       interest.Status(dao.Status),
		Message:      strVal(dao.Message),
		ReviewNote:   strVal(dao.ReviewNote),
		ReviewedAt:   dao.ReviewedAt,
		CreatedAt:    dao.CreatedAt,
		UpdatedAt:    dao.UpdatedAt,
	}, nil
}

// toInviteDao converts an invite.Invite to InviteDao.
func toInviteDao(inv *invite.Invite) *InviteDao {
	return &InviteDao{
		ID:               inv.ID,
		CampaignID:       inv.CampaignID,
		SenderID:         inv.SenderID,
		RecipientUserID:  strPtr(inv.RecipientUserID),
		RecipientEmail:   strPtr(inv.RecipientEmail),
		RecipientPartyID: strPtr(inv.RecipientPartyID),
		SuggestedAmount:  decPtr(inv.SuggestedAmount),
		Status:           string(inv.Status),
		Message:          strPtr(inv.Message),
		RespondedAt:      inv.RespondedAt,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// toInvite converts an InviteDao to invite.Invite.
func toInvite(dao *InviteDao) (*invite.Invite, error) {
	suggested, err := parseDecPtr(dao.SuggestedAmount, "suggested_amount")
	if err != nil {
		return nil, err
	}

	return &invite.Invite{
		ID:               dao.ID,
		CampaignID:       dao.CampaignID,
		SenderID:         dao.SenderID,
		RecipientUserID:  strVal(dao.RecipientUserID),
		RecipientEmail:   strVal(dao.RecipientEmail),
		RecipientPartyID: strVal(dao.RecipientPartyID),
		SuggestedAmount:  suggested,
		Status:           invite.Status(dao.Status),
		Message:          strVal(dao.Message),
		RespondedAt:      dao.RespondedAt,
		CreatedAt:        dao.CreatedAt,
		UpdatedAt:        dao.UpdatedAt,
	}, nil
}

// toBackingDao converts a backing.Backing to BackingDao.
func toBackingDao(b *backing.Backing) *BackingDao {
	dao := &BackingDao{
		ID:                b.ID,
		UserID:            b.UserID,
		EntityID:          b.EntityID,
		CampaignID:        strPtr(b.CampaignID),
		Amount:            b.Amount.String(),
		Status:            string(b.Status),
		UnlockRequestedAt: b.UnlockRequestedAt,
		UnlockEffectiveAt: b.UnlockEffectiveAt,
		UnlockedAt:        b.UnlockedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}

	switch b.Origin.Kind() {
	case backing.OriginInterest:
		dao.SourceInterestID = strPtr(b.Origin.SourceID())
	case backing.OriginInvite:
		dao.SourceInviteID = strPtr(b.Origin.SourceID())
	}

	return dao
}

// toBacking converts a BackingDao to backing.Backing.
func toBacking(dao *BackingDao) (*backing.Backing, error) {
	amount, err := parseDec(dao.Amount, "amount")
	if err != nil {
		return nil, err
	}

	origin := backing.Direct()
	switch {
	case dao.SourceInterestID != nil:
		origin = backing.FromInterest(*dao.SourceInterestID)
	case dao.SourceInviteID != nil:
		origin = backing.FromInvite(*dao.SourceInviteID)
	}

	return &backing.Backing{
		ID:                dao.ID,
		UserID:            dao.UserID,
		EntityID:          dao.EntityID,
		CampaignID:        strVal(dao.CampaignID),
		Amount:            amount,
		Status:            backing.Status(dao.Status),
		Origin:            origin,
		UnlockRequestedAt: dao.UnlockRequestedAt,
		UnlockEffectiveAt: dao.UnlockEffectiveAt,
		UnlockedAt:        dao.UnlockedAt,
		CreatedAt:         dao.CreatedAt,
		UpdatedAt:         dao.UpdatedAt,
	}, nil
}
