package fyers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"CandleVault/internal/domain/models"

	"golang.org/x/time/rate"
)

// Client implements a QuoteProvider backed by the Fyers history API.
type Client struct {
	baseURL  string
	tokenURL string
	http     *http.Client
	limiter  *rate.Limiter

	mu          sync.RWMutex
	clientID    string
	accessToken string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRequestDelay spaces history requests at least this far apart.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithCredentials sets the API credentials used in the Authorization header.
func WithCredentials(clientID, accessToken string) Option {
	return func(c *Client) {
		c.clientID = clientID
		c.accessToken = accessToken
	}
}

// New creates a new Fyers history client.
func New(baseURL, tokenURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokenURL: tokenURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAccessToken swaps the access token used for subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// SetClientID sets the API client id.
func (c *Client) SetClientID(id string) {
	c.mu.Lock()
	c.clientID = id
	c.mu.Unlock()
}

func (c *Client) authHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	// The upstream expects "<clientID>:<accessToken>", not a Bearer scheme.
	return c.clientID + ":" + c.accessToken
}

type historyResponse struct {
	S       string      `json:"s"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Candles [][]float64 `json:"candles"`
}

// History fetches candles for one symbol across [from, to] calendar days.
func (c *Client) History(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", resolution)
	q.Set("date_format", "1")
	q.Set("range_from", from.UTC().Format("2006-01-02"))
	q.Set("range_to", to.UTC().Format("2006-01-02"))
	q.Set("cont_flag", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("version", "3")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.TransientError{Err: fmt.Errorf("history %s: %w", symbol, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &models.TransientError{Err: fmt.Errorf("history %s: read body: %w", symbol, err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &models.AuthError{Status: resp.StatusCode, Message: string(body)}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &models.TransientError{Err: fmt.Errorf("history %s: HTTP %d", symbol, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("history %s: HTTP %d: %s", symbol, resp.StatusCode, body)
	}

	var hr historyResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		return nil, &models.TransientError{Err: fmt.Errorf("history %s: decode: %w", symbol, err)}
	}

	if hr.S == "no_data" {
		return nil, nil
	}
	if hr.S != "ok" || (hr.Code != 0 && hr.Code != 200) {
		if isAuthMessage(hr.Message) {
			return nil, &models.AuthError{Status: resp.StatusCode, Message: hr.Message}
		}
		return nil, fmt.Errorf("history %s: %s (s=%s, code=%d)", symbol, hr.Message, hr.S, hr.Code)
	}

	candles := make([]models.Candle, 0, len(hr.Candles))
	for _, row := range hr.Candles {
		candle, err := models.CandleFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func isAuthMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, kw := range []string{"token", "auth", "unauthorized", "invalid", "expire"} {
		if strings.Contains(m, kw) {
			return true
		}
	}
	return false
}

type refreshResponse struct {
	S           string `json:"s"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// ExchangeRefreshToken trades a refresh token for a fresh access token.
// The appIDHash is the hex SHA-256 of "<clientID>:<appSecret>".
func (c *Client) ExchangeRefreshToken(ctx context.Context, appIDHash, refreshToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"appIdHash":     appIDHash,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("marshal refresh payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("refresh token: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &models.AuthError{Status: resp.StatusCode, Message: string(body)}
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", fmt.Errorf("refresh token: decode: %w", err)
	}
	if rr.S != "ok" || rr.AccessToken == "" {
		return "", &models.AuthError{Status: resp.StatusCode, Message: rr.Message}
	}
	return rr.AccessToken, nil
}
