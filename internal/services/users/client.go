package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wam-arcade/games-service/internal/cache"
)

// detailsTTL bounds how long directory lookups are cached
const detailsTTL = 10 * time.Minute

// PlayerDetails is the player directory's view of a user
type PlayerDetails struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"displayName"`
	EmailAddress    string    `json:"emailAddress"`
	IsExcluded      bool      `json:"isExcluded"`
	ExclusionReason string    `json:"exclusionReason,omitempty"`
}

// Service resolves player identities against the remote player
// directory
type Service interface {
	// GetPlayerDetails returns the directory record for a user, or nil
	// when the directory does not know them
	GetPlayerDetails(ctx context.Context, userID uuid.UUID) (*PlayerDetails, error)
	// BanUser notifies the directory that a user was banned from a game
	BanUser(ctx context.Context, userID uuid.UUID) error
}

// Client is an HTTP client for the player directory service.
// Lookups are read through the cache; ban notifications are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Client
	logger     *slog.Logger
}

// NewClient creates a new player directory client
func NewClient(baseURL string, cacheClient cache.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cacheClient,
		logger:     logger.With(slog.String("component", "users")),
	}
}

var _ Service = (*Client)(nil)

func (c *Client) GetPlayerDetails(ctx context.Context, userID uuid.UUID) (*PlayerDetails, error) {
	var cached PlayerDetails
	if hit, err := c.cache.Get(ctx, cache.UserDetails(userID), &cached); err == nil && hit {
		return &cached, nil
	}

	details, err := c.fetchPlayerDetails(ctx, userID)
	if err != nil || details == nil {
		// Absence is not cached: a user provisioned after a failed
		// lookup is visible on the next one
		return details, err
	}

	_ = c.cache.Set(ctx, cache.UserDetails(userID), details, detailsTTL)
	return details, nil
}

func (c *Client) fetchPlayerDetails(ctx context.Context, userID uuid.UUID) (*PlayerDetails, error) {
	c.logger.Info("fetching player details from directory",
		slog.String("user_id", userID.String()))

	url := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player directory returned HTTP %d", resp.StatusCode)
	}

	var details PlayerDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decoding player details: %w", err)
	}
	return &details, nil
}

func (c *Client) BanUser(ctx context.Context, userID uuid.UUID) error {
	url := fmt.Sprintf("%s/api/users/%s/ban", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("player directory returned HTTP %d", resp.StatusCode)
	}
	return nil
}
