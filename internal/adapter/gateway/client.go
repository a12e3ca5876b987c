package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// ErrChargeNotFound indicates the gateway doesn't know the charge.
var ErrChargeNotFound = errors.New("charge not found")

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations against the PIX payment gateway.
type Client interface {
	CreateCharge(ctx context.Context, order model.Order) (*model.Charge, error)
	GetCharge(ctx context.Context, gatewayID string) (*model.Charge, error)
}

// tokenExpirySkew renews the cached credential before the gateway would
// reject it for clock drift.
const tokenExpirySkew = 30 * time.Second

// HTTPClient implements Client via the gateway REST API. The OAuth token is
// cached process-wide; refreshes are single-flight so concurrent callers
// await the same in-progress authentication.
type HTTPClient struct {
	baseURL      *url.URL
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	refresh     singleflight.Group
}

type chargeResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	EMV    string   `json:"emv"`
	Value  *float64 `json:"value,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewHTTPClient creates the gateway client with default timeout.
func NewHTTPClient(baseURL, clientID, clientSecret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:      parsed,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreateCharge registers a PIX charge for the order, using its code as the
// external reference the webhook later reports back.
func (c *HTTPClient) CreateCharge(ctx context.Context, order model.Order) (*model.Charge, error) {
	payload := map[string]any{
		"external_reference": order.Code,
		"value":              order.Amount,
		"payer": map[string]string{
			"name":     order.Buyer.Name,
			"email":    order.Buyer.Email,
			"document": order.Buyer.Document,
		},
	}

	var data chargeResponse
	if err := c.do(ctx, http.MethodPost, "/v1/pix/charges", payload, &data); err != nil {
		return nil, err
	}
	return toCharge(data), nil
}

// GetCharge queries the gateway for the current charge state.
func (c *HTTPClient) GetCharge(ctx context.Context, gatewayID string) (*model.Charge, error) {
	var data chargeResponse
	if err := c.do(ctx, http.MethodGet, path.Join("/v1/pix/charges", gatewayID), nil, &data); err != nil {
		return nil, err
	}
	return toCharge(data), nil
}

func toCharge(data chargeResponse) *model.Charge {
	return &model.Charge{
		GatewayID: data.ID,
		EMV:       data.EMV,
		Status:    data.Status,
		Value:     data.Value,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, endpointPath string, payload any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("gateway auth: %w", err)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	case http.StatusNotFound:
		return ErrChargeNotFound
	case http.StatusUnauthorized:
		c.invalidateToken()
		return fmt.Errorf("gateway rejected credentials: %s", resp.Status)
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return TooManyRequestsError{RetryAfter: retryAfter}
	default:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed",
			slog.String("path", endpointPath),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySkew)) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	v, err, _ := c.refresh.Do("token", func() (any, error) {
		token, expiry, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.token = token
		c.tokenExpiry = expiry
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *HTTPClient) authenticate(ctx context.Context) (string, time.Time, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/oauth/token")

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway authentication failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return "", time.Time{}, fmt.Errorf("authenticate: %s", resp.Status)
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", time.Time{}, err
	}
	if data.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("authenticate: empty token")
	}

	return data.AccessToken, time.Now().Add(time.Duration(data.ExpiresIn) * time.Second), nil
}

func (c *HTTPClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
