package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	internaljwt "support-chat-backend/internal/jwt"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/store"
)

type brokenDirectory struct{}

func (brokenDirectory) GetStaffUserByEmail(context.Context, string) (model.StaffUserItem, error) {
	return model.StaffUserItem{}, errors.New("dynamo down")
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := internaljwt.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	repo := store.NewMemoryRepository(nil)
	repo.SeedStaffUser(model.StaffUserItem{ID: "s1", Email: "bob@example.com", Name: "Bob", PasswordHash: hash})
	return New(repo, internaljwt.NewIssuer("secret", time.Hour, nil))
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(context.Background(), LoginParams{Email: " Bob@Example.com ", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.User.Name != "Bob" || result.Tokens.AccessToken == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	staff, err := svc.Authenticate(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if staff.Name != "Bob" {
		t.Fatalf("unexpected staff %+v", staff)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginParams{Email: "", Password: "x"})
	requireCode(t, err, ErrorCodeValidation)

	_, err = svc.Login(ctx, LoginParams{Email: "bob@example.com", Password: "wrong"})
	requireCode(t, err, ErrorCodeUnauthorized)

	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "hunter2"})
	requireCode(t, err, ErrorCodeUnauthorized)

	_, err = svc.Authenticate("garbage")
	requireCode(t, err, ErrorCodeUnauthorized)

	broken := New(brokenDirectory{}, internaljwt.NewIssuer("secret", time.Hour, nil))
	_, err = broken.Login(ctx, LoginParams{Email: "bob@example.com", Password: "hunter2"})
	requireCode(t, err, ErrorCodeStore)
}
