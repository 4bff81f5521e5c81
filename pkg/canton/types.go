package canton

// queryRequest is the JSON Ledger API active-contract query payload.
type queryRequest struct {
	TemplateIDs []string       `json:"templateIds"`
	Query       map[string]any `json:"query,omitempty"`
}

// queryResponse wraps the JSON Ledger API query result envelope.
type queryResponse struct {
	Result []contractResult `json:"result"`
	Status int              `json:"status"`
}

type contractResult struct {
	ContractID string         `json:"contractId"`
	TemplateID string         `json:"templateId"`
	Payload    map[string]any `json:"payload"`
}

// OwnershipRecord is an entity-ownership attestation read from the ledger.
type OwnershipRecord struct {
	ContractID  string
	UserParty   string
	EntityParty string
}

// PartyMapping links a Canton party to a platform user.
type PartyMapping struct {
	ContractID string
	PartyID    string
	UserID     string
	Email      string
}
