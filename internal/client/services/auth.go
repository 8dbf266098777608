// Package services contains application services for the finsync client:
// account lifecycle against the server and two-way transaction sync
// backed by the local sqlite store.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avoropay/finsync/internal/client/api"
	"github.com/avoropay/finsync/internal/client/repositories/metadata"
)

// Metadata keys used by the client services.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
	keyDeviceID     = "device_id"
	keyLastVersion  = "last_version"
)

// APIClient is the server surface the client services need.
type APIClient interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*api.RegisteredUser, error)
	Login(ctx context.Context, username, password, deviceID string) (*api.LoginResult, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, username, recoveryKey, newPassword string) error
	Pull(ctx context.Context, since int64) (*api.Delta, error)
	Push(ctx context.Context, records []api.Record) (*api.PushResult, error)
	SetTokens(accessToken, refreshToken string)
	OnTokens(fn func(ctx context.Context, accessToken, refreshToken string))
}

// AuthService manages the signed-in account: register, login/resume,
// logout, and recovery-key password reset. Tokens are persisted in the
// metadata store so a restart keeps the session.
type AuthService struct {
	client APIClient
	db     *sql.DB
}

func NewAuthService(client APIClient, db *sql.DB) *AuthService {
	s := &AuthService{client: client, db: db}

	// Persist every token rotation, including the transparent refresh
	// inside the API client.
	client.OnTokens(func(ctx context.Context, accessToken, refreshToken string) {
		repo := s.getMetadataRepo()
		_ = repo.Set(ctx, keyAccessToken, accessToken)
		_ = repo.Set(ctx, keyRefreshToken, refreshToken)
	})
	return s
}

func (s *AuthService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// Register creates an account and returns it, recovery key included.
func (s *AuthService) Register(ctx context.Context, username, password, confirmPassword string) (*api.RegisteredUser, error) {
	return s.client.Register(ctx, username, password, confirmPassword)
}

// Login authenticates and remembers the username for the prompt.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	deviceID, err := s.deviceID(ctx)
	if err != nil {
		return err
	}

	res, err := s.client.Login(ctx, username, password, deviceID)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := s.getMetadataRepo().Set(ctx, keyUsername, res.Username); err != nil {
		return err
	}
	return nil
}

// Resume seeds the API client from a previously saved session. It returns
// the saved username, or "" when there is no session to resume.
func (s *AuthService) Resume(ctx context.Context) (string, error) {
	repo := s.getMetadataRepo()

	refreshToken, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		return "", nil
	}

	accessToken, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	username, err := repo.Get(ctx, keyUsername)
	if err != nil {
		return "", err
	}

	s.client.SetTokens(accessToken, refreshToken)
	return username, nil
}

// Logout revokes the server session and wipes local session state. The
// transaction cache stays; it belongs to the account, not the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}

	repo := s.getMetadataRepo()
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUsername} {
		if err := repo.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ResetPassword swaps the password using a recovery key.
func (s *AuthService) ResetPassword(ctx context.Context, username, recoveryKey, newPassword string) error {
	return s.client.ResetPassword(ctx, username, recoveryKey, newPassword)
}

// deviceID returns this installation's stable identifier, creating it on
// first use.
func (s *AuthService) deviceID(ctx context.Context) (string, error) {
	repo := s.getMetadataRepo()

	id, err := repo.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := repo.Set(ctx, keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}
