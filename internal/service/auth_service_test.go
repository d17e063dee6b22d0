package service

import (
	"context"
	"testing"
	"time"

	"github.com/iticket/helpdesk/internal/config"
	"github.com/iticket/helpdesk/internal/domain"
)

type fakeRevocationStore struct {
	revoked map[string]time.Time
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: make(map[string]time.Time)}
}

func (f *fakeRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

func newAuthTestService() (*AuthService, *fakeUserRepo, *fakeRevocationStore) {
	users := newFakeUserRepo()
	revoked := newFakeRevocationStore()
	// cost 4 keeps bcrypt fast in tests
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}
	return NewAuthService(cfg, users, revoked), users, revoked
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "Alice", "  Alice@Example.COM ", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %s, self-registration must yield user", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if token == "" || exp.Before(time.Now()) {
		t.Error("expected a live session token")
	}

	loggedIn, _, _, err := svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in as %s, want %s", loggedIn.ID, user.ID)
	}

	if _, _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected failure for wrong password")
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); err == nil {
		t.Fatal("expected failure for unknown email")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := svc.Register(ctx, "Other Alice", "ALICE@example.com", "different")
	if err == nil || statusCode(t, err) != 409 {
		t.Fatalf("expected 409 for duplicate email, got %v", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc, users, _ := newAuthTestService()
	ctx := context.Background()

	admin := &domain.User{Name: "Admin", Email: "admin@test", Role: domain.RoleAdmin}
	helpdesk := &domain.User{Name: "Agent", Email: "agent@test", Role: domain.RoleHelpdesk}
	for _, u := range []*domain.User{admin, helpdesk} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	created, err := svc.CreateUser(ctx, admin, "New Agent", "new-agent@test", "s3cret", domain.RoleHelpdesk)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Role != domain.RoleHelpdesk {
		t.Errorf("role = %s", created.Role)
	}

	_, err = svc.CreateUser(ctx, helpdesk, "Sneaky", "sneaky@test", "s3cret", domain.RoleAdmin)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403 for non-admin, got %v", err)
	}

	_, err = svc.CreateUser(ctx, admin, "Bad Role", "bad@test", "s3cret", domain.Role("superuser"))
	if err == nil || statusCode(t, err) != 400 {
		t.Fatalf("expected 400 for unknown role, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, revoked := newAuthTestService()
	ctx := context.Background()

	_, token, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !isRevoked {
		t.Error("expected jti to be revoked after logout")
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	svc, users, _ := newAuthTestService()
	ctx := context.Background()

	admin := &domain.User{Name: "Admin", Email: "admin@test", Role: domain.RoleAdmin}
	agent := &domain.User{Name: "Agent", Email: "agent@test", Role: domain.RoleHelpdesk}
	endUser := &domain.User{Name: "User", Email: "user@test", Role: domain.RoleUser}
	for _, u := range []*domain.User{admin, agent, endUser} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	role := domain.RoleHelpdesk
	agents, err := svc.ListUsers(ctx, admin, &role)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 1 || agents[0].ID != agent.ID {
		t.Errorf("helpdesk filter returned %v", agents)
	}

	_, err = svc.ListUsers(ctx, endUser, nil)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
}
