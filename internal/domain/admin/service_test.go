package admin

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
	"github.com/clinicdesk/clinic/internal/platform/auth"
)

type memRepo struct {
	byUsername map[string]*Admin
}

func newMemRepo() *memRepo {
	return &memRepo{byUsername: make(map[string]*Admin)}
}

func (m *memRepo) Create(_ context.Context, a *Admin) error {
	if _, ok := m.byUsername[a.Username]; ok {
		return apperr.E(apperr.KindConflict, "admin username already taken")
	}
	cp := *a
	m.byUsername[a.Username] = &cp
	return nil
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*Admin, error) {
	a, ok := m.byUsername[username]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "admin not found")
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	allow := auth.DirectoryFunc(func(context.Context, string) (bool, error) { return true, nil })
	ts := auth.NewTokenService([]byte("test-secret-test-secret-test-key"), allow, allow, allow)
	return NewService(repo, ts, zerolog.Nop()), repo
}

func TestCreateAndLogin(t *testing.T) {
	svc, repo := newTestService(t)

	a, err := svc.Create(context.Background(), "root", "changeme-now")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.PasswordHash == "changeme-now" {
		t.Fatal("password stored in plaintext")
	}
	if _, ok := repo.byUsername["root"]; !ok {
		t.Fatal("admin not persisted")
	}

	token, err := svc.Login(context.Background(), "root", "changeme-now")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), "", "changeme-now"); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("empty username: expected invalid, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "root", "short"); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Errorf("short password: expected invalid, got %v", err)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), "root", "changeme-now"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "root", "other-password"); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), "root", "changeme-now"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Login(context.Background(), "root", "wrong"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Errorf("wrong password: expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost", "changeme-now"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Errorf("unknown username: expected unauthorized, got %v", err)
	}
}
