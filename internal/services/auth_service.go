package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
)

// bcryptCost is the work factor for password hashing. 12 keeps login
// under ~300ms on current hardware while staying expensive to brute
// force.
const bcryptCost = 12

// AuthService validates login credentials against the users table.
type AuthService struct {
	users *repository.UserRepository
	log   logger.Logger
}

// NewAuthService creates an AuthService on top of the given user
// repository. The repository is injected rather than constructed here so
// login can be tested against a mocked database.
func NewAuthService(users *repository.UserRepository, log logger.Logger) *AuthService {
	return &AuthService{users: users, log: log}
}

// Authenticate checks an email/password pair.
//
// An unknown email and a wrong password produce the same error so the
// endpoint cannot be used to probe which accounts exist.
//
// Parameters:
//   - ctx: request context
//   - email: login email
//   - password: plaintext password to verify
//
// Returns:
//   - *models.User: the authenticated user on success
//   - error: apperr.Invalid("invalid email or password") on any credential failure
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Debug("login lookup failed", map[string]interface{}{"email": email})
		return nil, apperr.Invalid("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Invalid("invalid email or password")
	}

	return user, nil
}

// HashPassword hashes a plaintext password for storage.
//
// Parameters:
//   - password: plaintext password
//
// Returns:
//   - string: the bcrypt hash
//   - error: bcrypt error (e.g. password longer than 72 bytes)
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
