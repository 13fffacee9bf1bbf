package service

import (
	"context"
	"errors"
	"strings"

	"store-ratings/internal/apperr"
	"store-ratings/internal/auth"
	"store-ratings/internal/logging"
	"store-ratings/internal/models"
	"store-ratings/internal/repository"

	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Name     string  `json:"name" validate:"min=20,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Password string  `json:"password" validate:"password"`
}

type CreateUserInput struct {
	Name     string  `json:"name" validate:"min=20,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Password string  `json:"password" validate:"password"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin user store_owner"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	NewPassword string `json:"newPassword" validate:"password"`
}

type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// Register creates a regular user account; the role is always "user".
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = trimPtr(in.Address)
	if err := s.check(in); err != nil {
		return nil, err
	}
	return s.createUser(ctx, nil, in.Name, in.Email, in.Address, in.Password, models.RoleUser)
}

// CreateUser lets an admin create an account with any role (default "user").
func (s *Service) CreateUser(ctx context.Context, p *Principal, in CreateUserInput) (*models.User, error) {
	if err := Authorize(p, OpCreateUser); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = trimPtr(in.Address)
	if err := s.check(in); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if in.Role != "" {
		r, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "role", Message: fieldMessages["role"]})
		}
		role = r
	}
	return s.createUser(ctx, p, in.Name, in.Email, in.Address, in.Password, role)
}

func (s *Service) createUser(ctx context.Context, actor *Principal, name, email string, address *string, password string, role models.UserRole) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internal("failed to hash password", err)
	}

	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, internal("failed to save user", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	s.audit(ctx, actor, "user", u.ID, "create", "created user "+u.Email+" with role "+string(u.Role))
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.check(in); err != nil {
		return nil, err
	}

	invalid := apperr.Unauthorized("Invalid email or password")

	u, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if isNotFound(err) {
			s.log.WithField("email", logging.MaskEmail(in.Email)).Info("login failed: unknown email")
			return nil, invalid
		}
		return nil, internal("failed to load user", err)
	}
	if !auth.VerifyPassword(in.Password, u.PasswordHash) {
		s.log.WithField("email", logging.MaskEmail(in.Email)).Info("login failed: wrong password")
		return nil, invalid
	}

	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, internal("failed to issue token", err)
	}
	return &LoginResult{AccessToken: tok, User: u}, nil
}

// Authenticate resolves a bearer token into a principal. The user is looked
// up again so deleted accounts and changed roles take effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperr.Unauthorized("Token expired")
		}
		return nil, apperr.Unauthorized("Invalid token")
	}
	if !validID(claims.Subject) {
		return nil, apperr.Unauthorized("Invalid token")
	}

	u, err := s.repo.GetUser(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, internal("failed to load user", err)
	}
	return &Principal{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (s *Service) Me(ctx context.Context, p *Principal) (*models.User, error) {
	if err := Authorize(p, OpViewProfile); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUser(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, internal("failed to load user", err)
	}
	return u, nil
}

// ChangePassword always targets the caller's own account.
func (s *Service) ChangePassword(ctx context.Context, p *Principal, in ChangePasswordInput) error {
	if err := Authorize(p, OpChangePassword); err != nil {
		return err
	}
	if err := s.check(in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return internal("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, p.UserID, hash); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("User not found")
		}
		return internal("failed to update password", err)
	}

	s.log.WithField("user_id", p.UserID).Info("password changed")
	return nil
}

func (s *Service) ListUsers(ctx context.Context, p *Principal, q UserQuery) ([]models.User, error) {
	if err := Authorize(p, OpListUsers); err != nil {
		return nil, err
	}

	f := repository.UserFilter{
		Name:    strings.TrimSpace(q.Name),
		Email:   strings.TrimSpace(q.Email),
		Address: strings.TrimSpace(q.Address),
		SortBy:  userSortField(q.SortBy),
		Desc:    descending(q.SortOrder),
	}
	if q.Role != "" {
		role, err := models.ParseRole(strings.TrimSpace(q.Role))
		if err != nil {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "role", Message: fieldMessages["role"]})
		}
		f.Role = role
	}

	users, err := s.repo.ListUsers(ctx, f)
	if err != nil {
		return nil, internal("failed to list users", err)
	}
	return users, nil
}

// GetUser returns a user; store owners carry their store's aggregate rating.
func (s *Service) GetUser(ctx context.Context, p *Principal, id string) (*models.UserDetail, error) {
	if err := Authorize(p, OpGetUser); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound("User not found")
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, internal("failed to load user", err)
	}

	detail := &models.UserDetail{User: *u}
	if u.Role == models.RoleStoreOwner {
		st, err := s.repo.GetStoreSummaryByOwner(ctx, u.ID)
		switch {
		case err == nil:
			detail.Store = &models.OwnedStore{
				ID:            st.ID,
				Name:          st.Name,
				AverageRating: roundRating(st.AverageRating),
				TotalRatings:  st.TotalRatings,
			}
		case isNotFound(err):
		default:
			return nil, internal("failed to load owned store", err)
		}
	}
	return detail, nil
}

// EnsureAdmin seeds the default administrator when no admin exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.repo.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		return err
	}

	s.log.WithField("email", admin.Email).Info("created default admin user")
	return nil
}
