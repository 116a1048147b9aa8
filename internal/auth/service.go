package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors surfaced to the web layer.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDisabled    = errors.New("account deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements account registration and session lifecycle.
type Service struct {
	store      *Store
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates an auth Service. tokenTTL bounds both the JWT expiry and
// the stored session expiry.
func NewService(store *Store, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		store:      store,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account with the "user" role. Email is normalized to
// lowercase; duplicates return ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password, name, phone string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, email, string(hash), name, phone, RoleUser)
	if err != nil {
		// A concurrent registration can slip past the existence check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies credentials, issues a bearer token, and records one session
// row for the new login. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !u.IsActive {
		return "", nil, ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := SignToken(s.jwtSecret, u, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: HashToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// Logout invalidates the session for the presented bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSessionByTokenHash(ctx, HashToken(token))
}

// Verify validates a bearer token and returns the identity it carries.
func (s *Service) Verify(token string) (Identity, error) {
	return VerifyToken(s.jwtSecret, token)
}

// CurrentUser loads the account behind a verified identity.
func (s *Service) CurrentUser(ctx context.Context, ident Identity) (*User, error) {
	return s.store.GetUserByID(ctx, ident.UserID)
}

// ListUsers returns all registered accounts. The web layer enforces that only
// admins reach this.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// PurgeExpiredSessions removes stale session rows. Intended for a periodic
// background job.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, time.Now())
}
