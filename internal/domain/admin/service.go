package admin

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
	"github.com/clinicdesk/clinic/internal/platform/auth"
)

type Service struct {
	repo   Repository
	tokens *auth.TokenService
	log    zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenService, log zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Create provisions an admin account. There is no self-service signup for
// admins; this runs from the CLI or an existing admin session.
func (s *Service) Create(ctx context.Context, username, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.E(apperr.KindInvalid, "username is required")
	}
	if len(password) < 8 {
		return nil, apperr.E(apperr.KindInvalid, "password must be at least 8 characters")
	}
	if taken, err := s.repo.ExistsByUsername(ctx, username); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.E(apperr.KindConflict, "admin username already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a := &Admin{Username: username, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("username", username).Msg("admin created")
	return a, nil
}

// Login checks credentials and issues a token with the username as subject.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return "", apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Issue(a.Username)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}
