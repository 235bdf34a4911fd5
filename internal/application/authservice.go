package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit in bytes.
	maxNameLen     = 120
)

// errInvalidCredentials is shared by every login failure so responses never
// reveal whether the email or the password was wrong.
var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", model.ErrUnauthorized)

var errInvalidSession = fmt.Errorf("%w: token is not valid", model.ErrUnauthorized)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  model.PublicUser
	Token model.SessionToken
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// AuthService orchestrates registration, login, and session verification.
// It holds no per-user state; sessions live entirely in signed tokens.
type AuthService struct {
	users     driven.UserStore
	tokens    driven.TokenCodec
	hasher    driven.PasswordHasher
	names     *bluemonday.Policy
	dummyHash string
	now       func() time.Time
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. It hashes a throwaway password once
// so that logins for unknown emails cost the same as real ones.
func NewAuthService(
	users driven.UserStore,
	tokens driven.TokenCodec,
	hasher driven.PasswordHasher,
	logger *slog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		names:  bluemonday.StrictPolicy(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if h, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = h
	} else {
		logger.Warn("failed to prepare dummy password hash", "error", err)
	}

	return s
}

// Register creates a new user and issues a session token for it.
// Returns model.ErrConflict if the email is already registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := model.NormalizeEmail(in.Email)
	name := strings.TrimSpace(html.UnescapeString(s.names.Sanitize(in.Name)))

	if email == "" || in.Password == "" || name == "" {
		return nil, fmt.Errorf("%w: email, password, and name are required", model.ErrInvalidRequest)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email address", model.ErrInvalidRequest)
	}
	if len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password must be between %d and %d characters", model.ErrInvalidRequest, minPasswordLen, maxPasswordLen)
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: name must be at most %d characters", model.ErrInvalidRequest, maxNameLen)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: user already exists with this email", model.ErrConflict)
	case !errors.Is(err, driven.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, driven.ErrUserExists) {
			return nil, fmt.Errorf("%w: user already exists with this email", model.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login verifies credentials and issues a new session token. Unknown emails
// and wrong passwords fail with the same model.ErrUnauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", model.ErrInvalidRequest)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, driven.ErrUserNotFound) {
		if s.dummyHash != "" {
			_ = s.hasher.Compare(s.dummyHash, password)
		}
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, driven.ErrPasswordMismatch) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Logout is stateless: tokens are not tracked server-side, so the transport
// only needs to clear the client's copy. It always succeeds.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// Authenticate verifies a session token and loads its user. Every failure,
// including a user deleted after the token was issued, is model.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.PublicUser, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token provided", model.ErrUnauthorized)
	}

	userID, err := s.tokens.Verify(token, s.now())
	if err != nil {
		return nil, errInvalidSession
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, driven.ErrUserNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	pub := user.Public()
	return &pub, nil
}
