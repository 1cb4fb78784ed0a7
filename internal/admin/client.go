// Package admin is the client for the bearer-token-gated player
// administration endpoints: reading a player record and applying sparse
// edits to it.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/world"
)

// Stats is the administratively editable stat block of a player.
type Stats struct {
	Hitpoints      int `json:"hitpoints"`
	MaxHitpoints   int `json:"max_hitpoints"`
	SpellPoints    int `json:"spell_points"`
	MaxSpellPoints int `json:"max_spell_points"`
	Level          int `json:"level"`
	Experience     int `json:"experience"`
}

// InventorySlot binds an object to a named carry slot.
type InventorySlot struct {
	Slot     string `json:"slot"`
	ObjectID string `json:"object_id"`
}

// GemProgress tracks the player's gem collection and birthstone.
type GemProgress struct {
	Collected  []string `json:"collected"`
	Birthstone string   `json:"birthstone"`
}

// PlayerRecord is the full administrative view of a player.
type PlayerRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Role      string          `json:"role,omitempty"`
	Stats     Stats           `json:"stats"`
	Inventory []InventorySlot `json:"inventory,omitempty"`
	Gems      GemProgress     `json:"gems"`
	Location  string          `json:"location"`
}

// PlayerPatch is a sparse edit: nil fields are left untouched by the server.
type PlayerPatch struct {
	Name      *string         `json:"name,omitempty"`
	Role      *string         `json:"role,omitempty"`
	Stats     *Stats          `json:"stats,omitempty"`
	Inventory []InventorySlot `json:"inventory,omitempty"`
	Gems      *GemProgress    `json:"gems,omitempty"`
	Location  *string         `json:"location,omitempty"`
}

// Client talks to the admin endpoints with a bearer token.
type Client struct {
	base   string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewClient creates an admin Client.
//
// Precondition: base must be a normalized base URL (no trailing slash);
// token must be a valid admin bearer token; logger must be non-nil.
func NewClient(base, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		base:   base,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// GetPlayer fetches the player record with the given id.
func (c *Client) GetPlayer(ctx context.Context, id string) (PlayerRecord, error) {
	var record PlayerRecord
	err := c.do(ctx, http.MethodGet, id, nil, &record)
	if err != nil {
		return PlayerRecord{}, err
	}
	return record, nil
}

// UpdatePlayer applies a sparse patch and returns the updated record.
func (c *Client) UpdatePlayer(ctx context.Context, id string, patch PlayerPatch) (PlayerRecord, error) {
	start := time.Now()

	var record PlayerRecord
	if err := c.do(ctx, http.MethodPatch, id, &patch, &record); err != nil {
		return PlayerRecord{}, err
	}

	c.logger.Info("player record updated",
		zap.String("player", id),
		zap.Duration("elapsed", time.Since(start)),
	)
	return record, nil
}

func (c *Client) do(ctx context.Context, method, id string, body, out any) error {
	reqURL := c.base + "/admin/players/" + url.PathEscape(id)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding admin request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("building admin request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling admin endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &world.RequestError{URL: reqURL, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding admin response: %w", err)
	}
	return nil
}
