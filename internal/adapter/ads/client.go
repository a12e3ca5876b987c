package ads

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// Client sends purchase conversion events to the ad network.
type Client interface {
	Send(ctx context.Context, event model.ConversionEvent) (*model.ConversionResult, error)
}

// HTTPClient implements Client via the Graph-style conversions endpoint.
type HTTPClient struct {
	baseURL     *url.URL
	pixelID     string
	accessToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

type userData struct {
	Email     []string `json:"em,omitempty"`
	Phone     []string `json:"ph,omitempty"`
	External  []string `json:"external_id,omitempty"`
	ClientIP  string   `json:"client_ip_address,omitempty"`
	UserAgent string   `json:"client_user_agent,omitempty"`
	FBC       string   `json:"fbc,omitempty"`
	FBP       string   `json:"fbp,omitempty"`
}

type customData struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

type serverEvent struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	EventID      string     `json:"event_id"`
	ActionSource string     `json:"action_source"`
	UserData     userData   `json:"user_data"`
	CustomData   customData `json:"custom_data"`
}

type eventsRequest struct {
	Data []serverEvent `json:"data"`
}

// NewHTTPClient creates the conversion API client with default timeout.
func NewHTTPClient(baseURL, pixelID, accessToken string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ads url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("ads url must be absolute")
	}
	return &HTTPClient{
		baseURL:     parsed,
		pixelID:     pixelID,
		accessToken: accessToken,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Send posts one purchase event. The result is returned even on API errors
// so callers can record the response for diagnostics.
func (c *HTTPClient) Send(ctx context.Context, event model.ConversionEvent) (*model.ConversionResult, error) {
	payload := eventsRequest{
		Data: []serverEvent{{
			EventName:    "Purchase",
			EventTime:    time.Now().Unix(),
			EventID:      event.EventID,
			ActionSource: "website",
			UserData: userData{
				Email:     hashed(normalizeEmail(event.Email)),
				Phone:     hashed(digitsOnly(event.Phone)),
				External:  hashed(digitsOnly(event.Document)),
				ClientIP:  event.ClientIP,
				UserAgent: event.UserAgent,
				FBC:       event.FBC,
				FBP:       event.FBP,
			},
			CustomData: customData{
				Currency: event.Currency,
				Value:    event.Value,
			},
		}},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, c.pixelID, "events")
	query := endpoint.Query()
	query.Set("access_token", c.accessToken)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := &model.ConversionResult{StatusCode: resp.StatusCode, Body: string(raw)}
	if resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("conversion api request failed",
			slog.String("event_id", event.EventID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", result.Body),
		)
		return result, fmt.Errorf("conversion api: %s", resp.Status)
	}

	return result, nil
}

// hashed returns the SHA-256 hex of a normalized identity value, or an empty
// slice when there is nothing to hash.
func hashed(value string) []string {
	if value == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(value))
	return []string{hex.EncodeToString(sum[:])}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
