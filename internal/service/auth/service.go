package auth

import (
	"context"
	"errors"
	"strings"

	internaljwt "support-chat-backend/internal/jwt"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/store"
)

// StaffDirectory is the read-only view of staff accounts this service needs.
type StaffDirectory interface {
	GetStaffUserByEmail(ctx context.Context, email string) (model.StaffUserItem, error)
}

type Service struct {
	staff  StaffDirectory
	issuer *internaljwt.Issuer
}

func New(staff StaffDirectory, issuer *internaljwt.Issuer) *Service {
	return &Service{staff: staff, issuer: issuer}
}

func (s *Service) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)

	if email == "" || password == "" {
		return LoginResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.staff.GetStaffUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", err)
		}
		return LoginResult{}, newError(ErrorCodeStore, "failed to load staff user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	tokens, err := s.issuer.CreateToken(internaljwt.Staff{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		return LoginResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}

	return LoginResult{User: user, Tokens: tokens}, nil
}

// Authenticate resolves a bearer token to the staff identity it carries.
func (s *Service) Authenticate(token string) (internaljwt.Staff, error) {
	staff, err := s.issuer.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return internaljwt.Staff{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}
	return staff, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
