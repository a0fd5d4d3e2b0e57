package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials occurs when the email or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput occurs when registration fields are missing or malformed.
	ErrInvalidInput = errors.New("invalid registration input")
)

// WalletProvisioner opens a wallet for a freshly registered user.
type WalletProvisioner interface {
	Provision(ctx context.Context, userID string) error
}

// Service implements registration and login.
type Service struct {
	repo    Repository
	wallets WalletProvisioner
}

// NewService builds an identity service.
func NewService(repo Repository, wallets WalletProvisioner) *Service {
	return &Service{repo: repo, wallets: wallets}
}

// Register creates a user, hashes the password and opens a zero-balance wallet.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	name := strings.TrimSpace(creds.Name)
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}
	if len(creds.Password) < 6 {
		return User{}, ErrInvalidInput
	}
	role := creds.Role
	if role == "" {
		role = RoleCustomer
	}
	if role != RoleCustomer && role != RoleOwner {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	if s.wallets != nil {
		if err := s.wallets.Provision(ctx, user.ID); err != nil {
			return User{}, err
		}
	}
	return user, nil
}

// Authenticate verifies an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get looks up a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
