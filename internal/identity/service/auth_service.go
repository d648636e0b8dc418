// Package service implements registration and login for users and admins.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	admindomain "echo-memory/backend/internal/admin/domain"
	"echo-memory/backend/internal/security"
	userdomain "echo-memory/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountSuspended       = errors.New("account is suspended")
)

// DefaultLanguage is used when a register request carries no language or one
// outside the supported set.
const DefaultLanguage = "en"

// SupportedLanguages is the set of language codes accepted at registration.
var SupportedLanguages = map[string]bool{
	"en": true, "hi": true, "bn": true, "ta": true, "te": true, "mr": true, "gu": true,
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// AdminRepo is the minimal admin repository needed by the auth service.
type AdminRepo interface {
	GetByUsername(ctx context.Context, username string) (*admindomain.Admin, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// LoginResult holds the outcome of a successful user login.
type LoginResult struct {
	Token string
	User  *userdomain.User
}

// AdminLoginResult holds the outcome of a successful admin login.
type AdminLoginResult struct {
	Token    string
	Username string
	Role     string
}

// AuthService implements register, login, and admin login. Password hashing
// is memory-hard, so concurrent logins are bounded by a semaphore sized from
// configuration; an unbounded burst of Argon2 work could otherwise exhaust
// the host.
type AuthService struct {
	userRepo  UserRepo
	adminRepo AdminRepo
	hasher    *security.Hasher
	tokens    *security.TokenProvider
	tokenTTL  time.Duration
	hashSlots *semaphore.Weighted
}

// NewAuthService returns an AuthService with the given dependencies.
// maxConcurrentHashes bounds in-flight Argon2 computations; values below 1
// are raised to 1.
func NewAuthService(
	userRepo UserRepo,
	adminRepo AdminRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	tokenTTL time.Duration,
	maxConcurrentHashes int,
) *AuthService {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 1
	}
	return &AuthService{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		hasher:    hasher,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		hashSlots: semaphore.NewWeighted(int64(maxConcurrentHashes)),
	}
}

// Register creates a user account. Returns the new user's wire identifier.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, language string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" || !userdomain.ValidEmail(email) {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidArgument)
	}
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	if fullName == "" {
		return "", fmt.Errorf("%w: full name is required", ErrInvalidArgument)
	}
	if !SupportedLanguages[language] {
		language = DefaultLanguage
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrEmailAlreadyRegistered
	}

	uid, err := userdomain.NewUID()
	if err != nil {
		return "", err
	}
	hashed, err := s.hashPassword(ctx, password)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		UID:          uid,
		Email:        email,
		PasswordHash: hashed,
		FullName:     fullName,
		LanguageCode: language,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	return uid, nil
}

// Login authenticates a user by email and password and issues a token whose
// claims carry uid, email, name, and lang.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.comparePassword(ctx, user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountSuspended
	}

	token, err := s.tokens.Issue(map[string]any{
		"uid":   user.UID,
		"email": user.Email,
		"name":  user.FullName,
		"lang":  user.LanguageCode,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// AdminLogin authenticates an operator by username and password and issues a
// token with the admin flag set.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*AdminLoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidArgument)
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.comparePassword(ctx, admin.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(map[string]any{
		"uid":      fmt.Sprintf("admin_%d", admin.ID),
		"username": admin.Username,
		"role":     admin.Role,
		"is_admin": true,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &AdminLoginResult{Token: token, Username: admin.Username, Role: admin.Role}, nil
}

func (s *AuthService) hashPassword(ctx context.Context, password string) (string, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.hashSlots.Release(1)
	return s.hasher.Hash([]byte(password))
}

func (s *AuthService) comparePassword(ctx context.Context, hash, password string) error {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hashSlots.Release(1)
	return s.hasher.Compare(hash, []byte(password))
}
