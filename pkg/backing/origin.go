package backing

import "encoding/json"

// OriginKind discriminates where a backing came from.
type OriginKind int

const (
	// OriginNone marks a direct, unsolicited pledge.
	OriginNone OriginKind = iota
	// OriginInterest marks a backing converted from an accepted interest.
	OriginInterest
	// OriginInvite marks a backing converted from an accepted invite.
	OriginInvite
)

func (k OriginKind) String() string {
	switch k {
	case OriginInterest:
		return "interest"
	case OriginInvite:
		return "invite"
	default:
		return "direct"
	}
}

// Origin identifies the source record a backing was converted from, if
// any. The tagged form makes the interest/invite mutual exclusivity a
// type-level invariant rather than a pair of nullable ids.
type Origin struct {
	kind     OriginKind
	sourceID string
}

// Direct returns the origin of an unsolicited pledge.
func Direct() Origin {
	return Origin{kind: OriginNone}
}

// FromInterest returns an origin pointing at an accepted interest.
func FromInterest(interestID string) Origin {
	return Origin{kind: OriginInterest, sourceID: interestID}
}

// FromInvite returns an origin pointing at an accepted invite.
func FromInvite(inviteID string) Origin {
	return Origin{kind: OriginInvite, sourceID: inviteID}
}

// Kind returns the origin discriminator.
func (o Origin) Kind() OriginKind {
	return o.kind
}

// SourceID returns the converted record's id, or "" for a direct pledge.
func (o Origin) SourceID() string {
	return o.sourceID
}

// MarshalJSON renders the origin as its kind plus the source id, when any.
func (o Origin) MarshalJSON() ([]byte, error) {
	type view struct {
		Kind     string `json:"kind"`
		SourceID string `json:"source_id,omitempty"`
	}
	return json.Marshal(view{Kind: o.kind.String(), SourceID: o.sourceID})
}
