package services

import (
	"context"
	"strings"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
)

// UserService implements admin account management.
type UserService struct {
	users *repository.UserRepository
	log   logger.Logger
}

// NewUserService creates a UserService on top of the given user
// repository.
func NewUserService(users *repository.UserRepository, log logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// Create registers a new account with a hashed password.
//
// Parameters:
//   - ctx: request context
//   - req: account fields; the role must be one of the known roles
//
// Returns:
//   - *models.User: the created account (hash stripped from JSON by the model)
//   - error: apperr.Invalid on bad fields, apperr.Conflict when the email is taken
func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Invalid("a valid email is required")
	}
	if req.Name == "" {
		return nil, apperr.Invalid("name is required")
	}
	if !models.IsValidRole(req.Role) {
		return nil, apperr.Invalid("unknown role %q", req.Role)
	}
	if len(req.Password) < 8 {
		return nil, apperr.Invalid("password must be at least 8 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("email %s is already registered", email)
		}
		return nil, err
	}
	return user, nil
}

// List returns all active accounts.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Deactivate soft-deletes an account. An admin cannot deactivate their
// own account, which keeps the system from locking out its last admin.
//
// Parameters:
//   - ctx: request context
//   - actorID: the acting admin
//   - userID: the account to deactivate
//
// Returns:
//   - error: apperr.Invalid on self-deactivation, apperr.NotFound otherwise
func (s *UserService) Deactivate(ctx context.Context, actorID, userID int) error {
	if actorID == userID {
		return apperr.Invalid("cannot deactivate your own account")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return apperr.NotFound("user %d not found", userID)
	}
	return s.users.Deactivate(ctx, userID)
}
