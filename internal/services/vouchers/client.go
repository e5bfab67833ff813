package vouchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Service claims vouchers against the remote voucher service
type Service interface {
	// Claim attempts to claim a voucher for a player. A false result
	// means the voucher was rejected; errors are transport failures
	// and are treated as claim failure by callers, not retried here.
	Claim(ctx context.Context, playerID uuid.UUID, voucher string) (bool, error)
}

// Client is an HTTP client for the voucher service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new voucher service client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With(slog.String("component", "vouchers")),
	}
}

var _ Service = (*Client)(nil)

type claimRequest struct {
	PlayerID  uuid.UUID `json:"playerId"`
	VoucherID string    `json:"voucherId"`
}

type claimResponse struct {
	Success bool `json:"success"`
}

func (c *Client) Claim(ctx context.Context, playerID uuid.UUID, voucher string) (bool, error) {
	c.logger.Info("claiming voucher",
		slog.String("player_id", playerID.String()))

	body, err := json.Marshal(claimRequest{PlayerID: playerID, VoucherID: voucher})
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("%s/api/vouchers/claim", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var result claimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding claim response: %w", err)
	}
	return result.Success, nil
}
