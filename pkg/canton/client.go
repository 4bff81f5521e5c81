// Package canton is a thin client over the Canton JSON Ledger API used
// for ownership verification and party-to-user resolution. The backing
// platform never moves value through this client; settlement happens on
// the ledger itself.
package canton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/config"
)

const (
	queryPath = "/v1/query"

	ownershipTemplateID = "EntityRegistry:EntityOwnership"
	userMappingTemplate = "UserRegistry:UserPartyMapping"
)

// Client queries the Canton JSON Ledger API.
type Client struct {
	cfg    *config.CantonConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a new Canton JSON Ledger API client
func NewClient(cfg *config.CantonConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// VerifyOwnership reports whether an active EntityOwnership contract
// attests that userParty controls entityParty.
func (c *Client) VerifyOwnership(ctx context.Context, userParty, entityParty string) (bool, error) {
	records, err := c.queryOwnership(ctx, entityParty)
	if err != nil {
		return false, err
	}

	for _, rec := range records {
		if rec.UserParty == userParty {
			return true, nil
		}
	}
	return false, nil
}

// ResolveUserByPartyID returns the platform user id mapped to a Canton
// party, or "" when no mapping exists.
func (c *Client) ResolveUserByPartyID(ctx context.Context, partyID string) (string, error) {
	mappings, err := c.queryMappings(ctx, map[string]any{"party": partyID})
	if err != nil {
		return "", err
	}
	if len(mappings) == 0 {
		return "", nil
	}
	return mappings[0].UserID, nil
}

// ResolveUserByEmail returns the platform user id mapped to an email
// address, or "" when no mapping exists.
func (c *Client) ResolveUserByEmail(ctx context.Context, email string) (string, error) {
	mappings, err := c.queryMappings(ctx, map[string]any{"email": email})
	if err != nil {
		return "", err
	}
	if len(mappings) == 0 {
		return "", nil
	}
	return mappings[0].UserID, nil
}

func (c *Client) queryOwnership(ctx context.Context, entityParty string) ([]OwnershipRecord, error) {
	query := map[string]any{"entityParty": entityParty}
	// Only honor attestations issued by the platform operator.
	if c.cfg.OperatorParty != "" {
		query["operator"] = c.cfg.OperatorParty
	}
	results, err := c.query(ctx, queryRequest{
		TemplateIDs: []string{ownershipTemplateID},
		Query:       query,
	})
	if err != nil {
		return nil, err
	}

	records := make([]OwnershipRecord, 0, len(results))
	for _, res := range results {
		rec := OwnershipRecord{ContractID: res.ContractID}
		rec.UserParty, _ = res.Payload["userParty"].(string)
		rec.EntityParty, _ = res.Payload["entityParty"].(string)
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) queryMappings(ctx context.Context, query map[string]any) ([]PartyMapping, error) {
	results, err := c.query(ctx, queryRequest{
		TemplateIDs: []string{userMappingTemplate},
		Query:       query,
	})
	if err != nil {
		return nil, err
	}

	mappings := make([]PartyMapping, 0, len(results))
	for _, res := range results {
		m := PartyMapping{ContractID: res.ContractID}
		m.PartyID, _ = res.Payload["party"].(string)
		m.UserID, _ = res.Payload["userId"].(string)
		m.Email, _ = res.Payload["email"].(string)
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (c *Client) query(ctx context.Context, req queryRequest) ([]contractResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+queryPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ledger query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("Ledger query rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return nil, fmt.Errorf("ledger query returned status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return decoded.Result, nil
}
