// Package services contains server-side business logic. This file implements
// UserService: registration, login, refresh-token rotation, logout, and
// recovery-key password reset.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/auth"
	"github.com/avoropay/finsync/internal/server/config"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/avoropay/finsync/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// SessionCap is the maximum number of live refresh sessions per user,
// enforced after every login and refresh.
const SessionCap = 5

// DefaultDeviceID is recorded when a login carries no device identifier.
const DefaultDeviceID = "unknown"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisteredUser is returned from Register. RecoveryKey appears here and
// nowhere else: this response is the only time the secret leaves the server.
type RegisteredUser struct {
	ID          string
	Username    string
	RecoveryKey string
}

// LoginResult carries the token pair plus the identity echoed back to the
// client.
type LoginResult struct {
	TokenPair
	UserID   string
	Username string
}

// UserService provides the authentication operations. Per-user critical
// sections (session insertion + device-cap trim) run inside a transaction
// holding the user's row lock, so concurrent logins and refreshes for one
// user are serialized while different users proceed in parallel.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	accessTokenValidity   time.Duration
	refreshTokenValidity  time.Duration
	revokeSessionsOnReset bool
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		accessTokenValidity:   cfg.AccessTokenValidity,
		refreshTokenValidity:  cfg.RefreshTokenValidity,
		revokeSessionsOnReset: cfg.RevokeSessionsOnReset,
	}
}

// Register creates a new user. The username check is atomic: the unique
// index decides races between concurrent registrations. The password is
// bcrypt-hashed; the returned recovery key is shown to the user once.
func (s *UserService) Register(ctx context.Context, username, password, confirmPassword string) (*RegisteredUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrInvalidInput
	}
	if password != confirmPassword {
		return nil, common.ErrPasswordMismatch
	}
	if err := checkPasswordRules(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}
	recoveryKey, err := common.MakeRecoveryKey()
	if err != nil {
		return nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: string(hash),
		RecoveryKey:  recoveryKey,
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &RegisteredUser{ID: user.ID, Username: user.Username, RecoveryKey: user.RecoveryKey}, nil
}

// Login verifies the credentials and mints a token pair. Unknown username
// and wrong password both yield ErrInvalidCredentials, so the response
// never reveals which one failed.
func (s *UserService) Login(ctx context.Context, username, password, deviceID string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, common.ErrInvalidInput
	}
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.createSession(ctx, user.ID, deviceID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{TokenPair: *pair, UserID: user.ID, Username: user.Username}, nil
}

// RefreshToken validates a refresh token and rotates it: the session keeps
// its row but gets a new opaque token value and an expiry pushed out by the
// full refresh validity. A stolen old token stops resolving the moment the
// legitimate client refreshes. Expired sessions are deleted on detection.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.Sessions(s.db)

	session, err := repo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = repo.DeleteByToken(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	// the user may have been deleted since the session was issued
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	newRefresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, session.UserID); err != nil {
			return err
		}
		sessionsTx := s.repomanager.Sessions(tx)
		if err := sessionsTx.Rotate(ctx, refreshToken, newRefresh, s.refreshTokenValidity); err != nil {
			return err
		}
		if err := sessionsTx.TrimOverCap(ctx, session.UserID, SessionCap); err != nil {
			return err
		}
		access, err := auth.GenerateToken(session.UserID, s.jwtSecret, s.accessTokenValidity)
		if err != nil {
			return common.ErrInternal
		}
		pair = &TokenPair{AccessToken: access, RefreshToken: newRefresh}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// lost the rotation race to a concurrent refresh
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return pair, nil
}

// Logout deletes the matching session if present. Always succeeds:
// logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.Sessions(s.db).DeleteByToken(ctx, refreshToken)
}

// ResetPassword authenticates by recovery key, replaces the password hash,
// and rotates the recovery key so the old one is permanently invalidated.
// Existing sessions survive unless RevokeSessionsOnReset is configured.
func (s *UserService) ResetPassword(ctx context.Context, username, recoveryKey, newPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" || recoveryKey == "" || newPassword == "" {
		return common.ErrInvalidInput
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return common.ErrInternal
	}

	if subtle.ConstantTimeCompare([]byte(recoveryKey), []byte(user.RecoveryKey)) != 1 {
		return common.ErrInvalidRecoveryKey
	}
	if err := checkPasswordRules(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}
	newKey, err := common.MakeRecoveryKey()
	if err != nil {
		return common.ErrInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateCredentials(ctx, user.ID, string(hash), newKey); err != nil {
			return err
		}
		if s.revokeSessionsOnReset {
			if err := s.repomanager.Sessions(tx).TrimOverCap(ctx, user.ID, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// createSession inserts a new refresh session, enforces the device cap, and
// mints the access token, all under the user's row lock.
func (s *UserService) createSession(ctx context.Context, userID, deviceID string) (*TokenPair, error) {
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, userID); err != nil {
			return err
		}
		sessionsTx := s.repomanager.Sessions(tx)
		if err := sessionsTx.Create(ctx, userID, refresh, deviceID, s.refreshTokenValidity); err != nil {
			return err
		}
		if err := sessionsTx.TrimOverCap(ctx, userID, SessionCap); err != nil {
			return err
		}
		access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidity)
		if err != nil {
			return common.ErrInternal
		}
		pair = &TokenPair{AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// checkPasswordRules enforces the registration password policy: at least
// 6 characters, with at least one letter and one digit.
func checkPasswordRules(password string) error {
	if len(password) < 6 {
		return common.ErrPasswordTooShort
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return common.ErrPasswordTooSimple
	}
	return nil
}
