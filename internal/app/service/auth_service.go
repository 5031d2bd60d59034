package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tagcord/tagcord-backend/config"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/pkg/discord"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"github.com/tagcord/tagcord-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// IdentityProvider is the slice of the Discord OAuth client the auth flow
// needs. Tests substitute a stub.
type IdentityProvider interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*discord.User, error)
}

// TokenRevoker invalidates an issued session token before its natural
// expiry. Backed by the Redis blacklist in production.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, remaining time.Duration) error
}

// CascadeError reports which stage of the account deletion cascade failed.
// Earlier stages are not rolled back.
type CascadeError struct {
	Stage string
	Err   error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("account deletion failed at %s stage: %v", e.Stage, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

type AuthService struct {
	identity    IdentityProvider
	profileRepo repository.ProfileRepository
	tagRepo     repository.TagRepository
	revoker     TokenRevoker
	jwt         config.JWTConfig
}

func NewAuthService(
	identity IdentityProvider,
	profileRepo repository.ProfileRepository,
	tagRepo repository.TagRepository,
	revoker TokenRevoker,
	jwt config.JWTConfig,
) *AuthService {
	return &AuthService{
		identity:    identity,
		profileRepo: profileRepo,
		tagRepo:     tagRepo,
		revoker:     revoker,
		jwt:         jwt,
	}
}

// AuthorizeURL returns the Discord consent URL for the given state value.
func (s *AuthService) AuthorizeURL(state string) string {
	return s.identity.AuthorizeURL(state)
}

// SignIn exchanges an OAuth code, reads the Discord user behind it and
// upserts their profile. First sign-in creates the profile; later sign-ins
// refresh the identity snapshot on the profile (existing tag snapshots are
// left alone). Returns the profile and a fresh token pair.
func (s *AuthService) SignIn(ctx context.Context, code string) (*model.Profile, *util.TokenPair, error) {
	token, err := s.identity.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.identity.FetchUser(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.upsertProfile(user)
	if err != nil {
		return nil, nil, err
	}

	pair, err := util.GenerateTokenPair(
		profile.ID,
		profile.Username,
		profile.IsAdmin,
		s.jwt.Secret,
		s.jwt.AccessTokenExpiry,
		s.jwt.RefreshTokenExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User signed in", map[string]interface{}{
		"profile_id": profile.ID,
		"discord_id": profile.DiscordID,
	})

	return profile, pair, nil
}

func (s *AuthService) upsertProfile(user *discord.User) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByDiscordID(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = &model.Profile{
			DiscordID:     user.ID,
			Username:      user.Username,
			Avatar:        avatarURL(user),
			Discriminator: user.Discriminator,
		}
		if err := s.profileRepo.Create(profile); err != nil {
			return nil, err
		}
		return profile, nil
	}
	if err != nil {
		return nil, err
	}

	profile.Username = user.Username
	profile.Avatar = avatarURL(user)
	profile.Discriminator = user.Discriminator
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// avatarURL resolves the CDN avatar URL, nil when the user has none.
func avatarURL(user *discord.User) *string {
	if url := user.AvatarURL(); url != "" {
		return &url
	}
	return nil
}

// GetProfile loads the signed-in user's profile.
func (s *AuthService) GetProfile(userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateUsername changes the display name on the profile only. Tags keep
// the username they were submitted under.
func (s *AuthService) UpdateUsername(userID, username string) (*model.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	profile.Username = username
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SignOut revokes the presented token for its remaining lifetime.
func (s *AuthService) SignOut(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil {
		return nil
	}
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, token, remaining)
}

// DeleteAccount runs the deletion cascade: owned tags first, then the
// profile, then the session credential. A failing stage stops the cascade
// and is reported by name; completed stages stay deleted.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string, sessionToken string, sessionExpiresAt time.Time) error {
	if err := s.tagRepo.DeleteByOwner(userID); err != nil {
		return &CascadeError{Stage: "tags", Err: err}
	}

	if err := s.profileRepo.Delete(userID); err != nil {
		return &CascadeError{Stage: "profile", Err: err}
	}

	if s.revoker != nil && sessionToken != "" {
		remaining := time.Until(sessionExpiresAt)
		if remaining > 0 {
			if err := s.revoker.Revoke(ctx, sessionToken, remaining); err != nil {
				return &CascadeError{Stage: "identity", Err: err}
			}
		}
	}

	logger.Info("Account deleted", map[string]interface{}{
		"profile_id": userID,
	})
	return nil
}
