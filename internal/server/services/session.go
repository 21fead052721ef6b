// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, password login, and the
// issue/rotate/revoke lifecycle of the JWT pair.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/dbx"
	"github.com/viewtube/viewtube/internal/logging"
	"github.com/viewtube/viewtube/internal/server/auth"
	"github.com/viewtube/viewtube/internal/server/config"
	"github.com/viewtube/viewtube/internal/server/models"
	"github.com/viewtube/viewtube/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the registration form. Avatar is required; the cover
// image is optional. Paths point at files already spooled by the transport.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// SessionService implements the per-user session state machine:
// Register, Login, Refresh, Logout, ChangePassword.
//
// Invariant: a user has at most one live refresh token. Login overwrites any
// stored value (single active session per user, by policy), Refresh rotates
// it via a storage-level compare-and-swap, Logout clears it.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    Uploader
	logger      logging.Logger
	cfg         *config.Config
}

// NewSessionService constructs a SessionService using repositories, the
// media-upload collaborator, and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, up Uploader, l logging.Logger, cfg *config.Config) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		uploader:    up,
		logger:      l.With("module", "session"),
		cfg:         cfg,
	}
}

// Register validates the form, hashes the password, uploads the avatar (and
// optional cover image), and creates the user. The returned record has the
// password hash and refresh token stripped.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	if in.FullName == "" || in.Email == "" || in.Username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if in.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsernameOrEmail(ctx, in.Username, in.Email); err == nil {
		return nil, common.ErrConflict
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.PasswordHashCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath, "")
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "error", err.Error())
		return nil, fmt.Errorf("%w: avatar upload failed", common.ErrInternal)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.uploader.Upload(ctx, in.CoverImagePath, "")
		if err != nil {
			s.logger.Error(ctx, "cover image upload failed", "error", err.Error())
			return nil, fmt.Errorf("%w: cover image upload failed", common.ErrInternal)
		}
	}

	user := &models.User{
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	sanitized := created.Sanitized()
	return &sanitized, nil
}

// Login verifies the password for the user matching usernameOrEmail and, on
// success, mints a token pair and persists the refresh token, overwriting
// any previous value.
func (s *SessionService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, *TokenPair, error) {
	login := strings.TrimSpace(usernameOrEmail)
	if login == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username or email is required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsernameOrEmail(ctx, strings.ToLower(login), login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, common.ErrInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrUnauthorized
	}

	pair, err := s.issuePair(ctx, user, func(refresh string) error {
		return repo.UpdateRefreshToken(ctx, user.ID, &refresh)
	})
	if err != nil {
		return nil, nil, err
	}

	sanitized := user.Sanitized()
	return &sanitized, pair, nil
}

// Refresh validates a presented refresh token, rotates it atomically, and
// returns a fresh pair. Every failure mode surfaces as ErrUnauthorized
// (except an unknown user id, which is ErrNotFound) so responses do not
// reveal whether a token was expired, forged, or replayed.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, common.ErrUnauthorized
	}

	claims, err := auth.ParseRefreshToken(presented, []byte(s.cfg.RefreshTokenSecret))
	if err != nil {
		// expired vs tampered is logged but never surfaced
		s.logger.Warn(ctx, "refresh token rejected", "reason", err.Error())
		return nil, common.ErrUnauthorized
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		// a well-signed token that does not match storage means it was
		// rotated out already: replay signal
		s.logger.Warn(ctx, "superseded refresh token presented", "user_id", user.ID)
		return nil, common.ErrUnauthorized
	}

	pair, err := s.issuePair(ctx, user, func(refresh string) error {
		swapped, err := repo.SwapRefreshToken(ctx, user.ID, presented, refresh)
		if err != nil {
			return err
		}
		if !swapped {
			// concurrent rotation won the compare-and-swap
			return common.ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	return pair, nil
}

// Logout clears the stored refresh token. Calling it again for the same
// user is a no-op that also succeeds.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// ChangePassword verifies oldPassword and stores a hash of newPassword. The
// current session and refresh token deliberately stay valid; see DESIGN.md.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrNotFound
			}
			return common.ErrInternal
		}

		if !auth.CheckPassword(oldPassword, user.PasswordHash) {
			return common.ErrUnauthorized
		}

		hash, err := auth.HashPassword(newPassword, s.cfg.PasswordHashCost)
		if err != nil {
			return common.ErrInternal
		}

		return repo.UpdatePasswordHash(ctx, userID, hash)
	})
}

// CurrentUser returns the sanitized record for userID.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// --- helpers below ---

func (s *SessionService) issuePair(ctx context.Context, user *models.User, persist func(refresh string) error) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(user, []byte(s.cfg.AccessTokenSecret), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	refresh, err := auth.GenerateRefreshToken(user.ID, []byte(s.cfg.RefreshTokenSecret), s.cfg.RefreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := persist(refresh); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
