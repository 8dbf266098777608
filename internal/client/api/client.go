// Package api is the REST client for the finsync server. It keeps the
// current token pair, attaches the bearer header, and transparently
// refreshes once when an access token is rejected.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/avoropay/finsync/internal/common"
)

// Record is a transaction on the wire, matching the server contract.
type Record struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Memo     string  `json:"memo"`
	Deleted  bool    `json:"deleted"`
	Version  int64   `json:"version"`
}

// RegisteredUser is the register response. RecoveryKey is shown to the
// user once and never again.
type RegisteredUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	RecoveryKey string `json:"recoveryKey"`
}

// LoginResult is the login response.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
}

// Delta is the pull response.
type Delta struct {
	Records []Record `json:"records"`
	Version int64    `json:"version"`
}

// PushResult is the push response.
type PushResult struct {
	Applied int   `json:"applied"`
	Version int64 `json:"version"`
}

// Client talks to the server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// onTokens, when set, is called after every successful token change
	// so the caller can persist the pair.
	onTokens func(ctx context.Context, accessToken, refreshToken string)
}

// NewClient builds a client for the server at baseURL. A non-positive
// timeout falls back to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokens seeds the token pair, e.g. from the local metadata store.
func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

// OnTokens registers a callback invoked whenever the token pair changes.
func (c *Client) OnTokens(fn func(ctx context.Context, accessToken, refreshToken string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

func (c *Client) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) storeTokens(ctx context.Context, accessToken, refreshToken string) {
	c.mu.Lock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	fn := c.onTokens
	c.mu.Unlock()

	if fn != nil {
		fn(ctx, accessToken, refreshToken)
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password, confirmPassword string) (*RegisteredUser, error) {
	body := map[string]string{
		"username":        username,
		"password":        password,
		"confirmPassword": confirmPassword,
	}
	user := &RegisteredUser{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password, deviceID string) (*LoginResult, error) {
	body := map[string]string{
		"username": username,
		"password": password,
		"deviceId": deviceID,
	}
	res := &LoginResult{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, res); err != nil {
		return nil, err
	}
	c.storeTokens(ctx, res.AccessToken, res.RefreshToken)
	return res, nil
}

// Refresh rotates the refresh session and stores the new pair.
func (c *Client) Refresh(ctx context.Context) error {
	_, refreshToken := c.tokens()
	if refreshToken == "" {
		return common.ErrInvalidToken
	}

	var res struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", body, &res); err != nil {
		return err
	}
	c.storeTokens(ctx, res.AccessToken, res.RefreshToken)
	return nil
}

// Logout revokes the current refresh session and drops the stored pair.
func (c *Client) Logout(ctx context.Context) error {
	_, refreshToken := c.tokens()
	if refreshToken != "" {
		body := map[string]string{"refreshToken": refreshToken}
		if err := c.do(ctx, http.MethodPost, "/api/auth/logout", "", body, nil); err != nil {
			return err
		}
	}
	c.storeTokens(ctx, "", "")
	return nil
}

// ResetPassword swaps the password using a recovery key.
func (c *Client) ResetPassword(ctx context.Context, username, recoveryKey, newPassword string) error {
	body := map[string]string{
		"username":    username,
		"recoveryKey": recoveryKey,
		"newPassword": newPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", body, nil)
}

// Pull fetches records changed since the given watermark.
func (c *Client) Pull(ctx context.Context, since int64) (*Delta, error) {
	delta := &Delta{}
	path := "/api/sync?last_version=" + strconv.FormatInt(since, 10)
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// Push uploads a batch of locally changed records.
func (c *Client) Push(ctx context.Context, records []Record) (*PushResult, error) {
	res := &PushResult{}
	if err := c.doAuthed(ctx, http.MethodPost, "/api/sync", records, res); err != nil {
		return nil, err
	}
	return res, nil
}

// doAuthed performs an authenticated request, refreshing the token pair
// once if the access token is rejected.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	accessToken, _ := c.tokens()
	err := c.do(ctx, method, path, accessToken, body, out)
	if err == nil || !isAuthError(err) {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}
	accessToken, _ = c.tokens()
	return c.do(ctx, method, path, accessToken, body, out)
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired)
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns the server's {"error": code} payload back into the
// matching sentinel. A bare 401 (login) reads as bad credentials.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch payload.Error {
	case "invalid_input":
		return common.ErrInvalidInput
	case "passwords_do_not_match":
		return common.ErrPasswordMismatch
	case "password_too_short":
		return common.ErrPasswordTooShort
	case "password_needs_letter_and_digit":
		return common.ErrPasswordTooSimple
	case "username_exists":
		return common.ErrUsernameTaken
	case "user_not_found":
		return common.ErrUserNotFound
	case "invalid_recovery_key":
		return common.ErrInvalidRecoveryKey
	case "invalid_token":
		return common.ErrInvalidToken
	case "token_expired":
		return common.ErrTokenExpired
	case "not_found":
		return common.ErrNotFound
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrInvalidCredentials
	}
	return fmt.Errorf("server returned status %d: %w", resp.StatusCode, common.ErrInternal)
}
