package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avoropay/finsync/internal/client/api"
	"github.com/avoropay/finsync/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE transactions (
  id       TEXT PRIMARY KEY,
  amount   REAL NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  tx_date  TEXT NOT NULL DEFAULT '',
  memo     TEXT NOT NULL DEFAULT '',
  deleted  INTEGER NOT NULL DEFAULT 0,
  version  INTEGER NOT NULL DEFAULT 0,
  pending  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

// fakeAPIClient simulates the server: a record store with a per-push
// version counter, token bookkeeping, and injectable failures.
type fakeAPIClient struct {
	records map[string]api.Record
	version int64

	accessToken  string
	refreshToken string
	onTokens     func(ctx context.Context, accessToken, refreshToken string)

	users map[string]string // username -> password

	loginErr error
	pushErr  error
	pullErr  error

	pushCalls int
	pullSince []int64
	loggedOut bool
}

func newFakeAPIClient() *fakeAPIClient {
	return &fakeAPIClient{
		records: map[string]api.Record{},
		users:   map[string]string{},
	}
}

func (f *fakeAPIClient) Register(_ context.Context, username, password, confirm string) (*api.RegisteredUser, error) {
	if password != confirm {
		return nil, common.ErrPasswordMismatch
	}
	if _, ok := f.users[username]; ok {
		return nil, common.ErrUsernameTaken
	}
	f.users[username] = password
	return &api.RegisteredUser{ID: fmt.Sprintf("u%d", len(f.users)), Username: username, RecoveryKey: "a1b2c3d4"}, nil
}

func (f *fakeAPIClient) Login(ctx context.Context, username, password, _ string) (*api.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.users[username] != password {
		return nil, common.ErrInvalidCredentials
	}
	f.setTokens(ctx, "access-"+username, "refresh-"+username)
	return &api.LoginResult{
		AccessToken:  f.accessToken,
		RefreshToken: f.refreshToken,
		UserID:       "u1",
		Username:     username,
	}, nil
}

func (f *fakeAPIClient) Logout(ctx context.Context) error {
	f.loggedOut = true
	f.setTokens(ctx, "", "")
	return nil
}

func (f *fakeAPIClient) ResetPassword(_ context.Context, username, recoveryKey, newPassword string) error {
	if _, ok := f.users[username]; !ok {
		return common.ErrUserNotFound
	}
	if recoveryKey != "a1b2c3d4" {
		return common.ErrInvalidRecoveryKey
	}
	f.users[username] = newPassword
	return nil
}

func (f *fakeAPIClient) Pull(_ context.Context, since int64) (*api.Delta, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	f.pullSince = append(f.pullSince, since)

	delta := &api.Delta{Version: f.version}
	for _, r := range f.records {
		if r.Version > since {
			delta.Records = append(delta.Records, r)
		}
	}
	return delta, nil
}

func (f *fakeAPIClient) Push(_ context.Context, records []api.Record) (*api.PushResult, error) {
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushCalls++

	for _, r := range records {
		f.version++
		r.Version = f.version
		f.records[r.ID] = r
	}
	return &api.PushResult{Applied: len(records), Version: f.version}, nil
}

func (f *fakeAPIClient) SetTokens(accessToken, refreshToken string) {
	f.accessToken = accessToken
	f.refreshToken = refreshToken
}

func (f *fakeAPIClient) OnTokens(fn func(ctx context.Context, accessToken, refreshToken string)) {
	f.onTokens = fn
}

func (f *fakeAPIClient) setTokens(ctx context.Context, accessToken, refreshToken string) {
	f.accessToken = accessToken
	f.refreshToken = refreshToken
	if f.onTokens != nil {
		f.onTokens(ctx, accessToken, refreshToken)
	}
}
