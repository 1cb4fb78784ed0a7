// Package session owns the authenticated game session: the auth handshake,
// the per-room realtime connection, and the command channel back to the
// server. All shared session state (activity log, occupant set, room id) is
// mutated only through this package's handlers.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/world"
)

// Record is an issued game session: the bearer token plus the identity and
// starting room the server assigned.
type Record struct {
	Token    string `json:"token"`
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
}

// AuthClient creates sessions against the game server's auth endpoint.
type AuthClient struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

// NewAuthClient creates an AuthClient against the given API base URL.
//
// Precondition: base must be a normalized base URL (no trailing slash);
// logger must be non-nil.
func NewAuthClient(base string, timeout time.Duration, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		base:   base,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type createSessionRequest struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id,omitempty"`
}

// Create posts credentials to the auth endpoint and returns the issued
// session. A non-success response fails with a *world.RequestError carrying
// the status code.
func (c *AuthClient) Create(ctx context.Context, playerID, roomID string) (Record, error) {
	start := time.Now()
	url := c.base + "/auth/session"

	body, err := json.Marshal(createSessionRequest{PlayerID: playerID, RoomID: roomID})
	if err != nil {
		return Record{}, fmt.Errorf("encoding session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Record{}, fmt.Errorf("building session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("creating session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Record{}, &world.RequestError{URL: url, Status: resp.StatusCode}
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Record{}, fmt.Errorf("decoding session response: %w", err)
	}

	c.logger.Info("session created",
		zap.String("player", record.PlayerID),
		zap.String("room", record.RoomID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return record, nil
}
