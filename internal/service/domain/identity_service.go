package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/auth"
	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
)

// SessionStore maps opaque tokens to usernames.
type SessionStore interface {
	NewSession(ctx context.Context, username string, ttl time.Duration) (string, error)
	GetSession(ctx context.Context, token string) (username string, ok bool, err error)
	DeleteSession(ctx context.Context, token string) error
}

type IdentityService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	GetUser(ctx context.Context, username string) (*model.User, error)

	GetAvatar(ctx context.Context, username string) ([]byte, error)
	SetAvatar(ctx context.Context, username string, avatar []byte) error
	GetParticipation(ctx context.Context, username string) (string, error)
	SetParticipation(ctx context.Context, username, isPart string) error
	ListOrganizers(ctx context.Context) ([]model.User, error)
}

type LoginResult struct {
	Token string
	User  *model.User
}

type IdentityOptions struct {
	SessionTTL time.Duration
	// BootstrapSuffix enables organizer elevation for logins whose password ends with it.
	BootstrapSuffix string
}

type identityService struct {
	repo     repository.UserRepo
	sessions SessionStore
	opts     IdentityOptions
	logger   *zap.Logger
}

var _ IdentityService = (*identityService)(nil)

func NewIdentityService(userRepo repository.UserRepo, sessions SessionStore, opts IdentityOptions, logger *zap.Logger) *identityService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &identityService{
		repo:     userRepo,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

func (s *identityService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, service.Validationf("username and password are required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, service.Validationf("password must be at most %d bytes", auth.MaxPasswordBytes)
	}
	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, service.Conflictf("user %s already exists", username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleActor,
		IsPart:       model.PartNo,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and opens a session. Sessions are independent per client.
func (s *identityService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, service.Validationf("username and password are required")
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, service.ErrInvalidCredentials
	}

	if s.bootstrapApplies(password) && user.Role != model.RoleOrganizer {
		if err := s.repo.UpdateRole(ctx, user.Username, model.RoleOrganizer); err != nil {
			return nil, fmt.Errorf("elevate user: %w", err)
		}
		user.Role = model.RoleOrganizer
		s.logger.Warn("organizer role granted through bootstrap suffix", zap.String("username", user.Username))
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLogin(ctx, user.Username, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	token, err := s.sessions.NewSession(ctx, user.Username, s.opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *identityService) bootstrapApplies(password string) bool {
	return s.opts.BootstrapSuffix != "" && strings.HasSuffix(password, s.opts.BootstrapSuffix)
}

func (s *identityService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves the session token of the calling client.
func (s *identityService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	username, ok, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, service.ErrUnauthorized
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *identityService) GetUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFoundf("user %s", username)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetAvatar returns nil without error when the user has no avatar.
func (s *identityService) GetAvatar(ctx context.Context, username string) ([]byte, error) {
	if strings.TrimSpace(username) == "" {
		return nil, service.Validationf("username is required")
	}
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Avatar, nil
}

func (s *identityService) SetAvatar(ctx context.Context, username string, avatar []byte) error {
	n, err := s.repo.UpdateAvatar(ctx, username, avatar)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if n == 0 {
		return service.NotFoundf("user %s", username)
	}
	return nil
}

func (s *identityService) GetParticipation(ctx context.Context, username string) (string, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	return user.IsPart, nil
}

func (s *identityService) SetParticipation(ctx context.Context, username, isPart string) error {
	if isPart != model.PartYes && isPart != model.PartNo {
		return service.Validationf("isPart must be %q or %q", model.PartYes, model.PartNo)
	}
	n, err := s.repo.UpdateIsPart(ctx, username, isPart)
	if err != nil {
		return fmt.Errorf("update participation: %w", err)
	}
	if n == 0 {
		return service.NotFoundf("user %s", username)
	}
	return nil
}

func (s *identityService) ListOrganizers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListOrganizers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizers: %w", err)
	}
	return users, nil
}
