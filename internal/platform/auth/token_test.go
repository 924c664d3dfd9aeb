package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func staticDirectory(known ...string) Directory {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	return DirectoryFunc(func(_ context.Context, id string) (bool, error) {
		return set[id], nil
	})
}

func newTestService(admins, doctors, patients Directory) *TokenService {
	if admins == nil {
		admins = staticDirectory()
	}
	if doctors == nil {
		doctors = staticDirectory()
	}
	if patients == nil {
		patients = staticDirectory()
	}
	return NewTokenService(testSecret, admins, doctors, patients)
}

func TestIssueExtractRoundTrip(t *testing.T) {
	ts := newTestService(nil, nil, nil)
	for _, id := range []string{"root", "jane@clinic.test", "patient+tag@mail.test"} {
		token, err := ts.Issue(id)
		if err != nil {
			t.Fatalf("Issue(%q): %v", id, err)
		}
		subject, err := ts.ExtractSubject(token)
		if err != nil {
			t.Fatalf("ExtractSubject: %v", err)
		}
		if subject != id {
			t.Errorf("subject = %q, want %q", subject, id)
		}
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	ts := newTestService(nil, nil, nil)
	token, err := ts.Issue("jane@clinic.test")
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte in each segment. Every mutation must invalidate the token.
	for _, pos := range []int{5, len(token) / 2, len(token) - 2} {
		b := []byte(token)
		if b[pos] == 'A' {
			b[pos] = 'B'
		} else {
			b[pos] = 'A'
		}
		if _, err := ts.ExtractSubject(string(b)); err == nil {
			t.Errorf("tampered token at byte %d accepted", pos)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "jane@clinic.test",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	ts := newTestService(nil, nil, nil)
	if _, err := ts.ExtractSubject(expired); err == nil {
		t.Fatal("expired token accepted")
	} else if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	ts := newTestService(nil, nil, nil)
	for _, bad := range []string{"", "garbage", "a.b", strings.Repeat("x", 64)} {
		if _, err := ts.ExtractSubject(bad); err == nil {
			t.Errorf("malformed token %q accepted", bad)
		}
	}
}

func TestValidateChecksRoleDirectory(t *testing.T) {
	ts := newTestService(
		staticDirectory("root"),
		staticDirectory("jane@clinic.test"),
		staticDirectory("bob@mail.test"),
	)

	doctorToken, _ := ts.Issue("jane@clinic.test")

	if _, err := ts.Validate(context.Background(), doctorToken, RoleDoctor); err != nil {
		t.Errorf("doctor token against doctor role: %v", err)
	}
	// Same token against the wrong role must fail: the subject does not
	// exist in the admin or patient directories.
	if _, err := ts.Validate(context.Background(), doctorToken, RoleAdmin); err == nil {
		t.Error("doctor token accepted for admin role")
	}
	if _, err := ts.Validate(context.Background(), doctorToken, RolePatient); err == nil {
		t.Error("doctor token accepted for patient role")
	}
}

func TestDeletedAccountInvalidatesToken(t *testing.T) {
	existing := map[string]bool{"jane@clinic.test": true}
	doctors := DirectoryFunc(func(_ context.Context, id string) (bool, error) {
		return existing[id], nil
	})
	ts := newTestService(nil, doctors, nil)

	token, _ := ts.Issue("jane@clinic.test")
	if _, err := ts.Validate(context.Background(), token, RoleDoctor); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}

	delete(existing, "jane@clinic.test")
	if _, err := ts.Validate(context.Background(), token, RoleDoctor); err == nil {
		t.Fatal("token for deleted account still valid")
	} else if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestDifferentSecretRejected(t *testing.T) {
	other := NewTokenService([]byte("another-secret-another-secret-32"), staticDirectory(), staticDirectory(), staticDirectory())
	foreign, err := other.Issue("jane@clinic.test")
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestService(nil, nil, nil)
	if _, err := ts.ExtractSubject(foreign); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
}
