package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"
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

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.E(apperr.KindInvalid, "name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperr.E(apperr.KindInvalid, "email is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return apperr.E(apperr.KindInvalid, "phone is required")
	}
	if len(in.Password) < 8 {
		return apperr.E(apperr.KindInvalid, "password must be at least 8 characters")
	}
	return nil
}

// Register creates a patient account. Email and phone must both be unused;
// the database constraints back up these pre-checks under concurrency.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if taken, err := s.repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.E(apperr.KindConflict, "patient email already registered")
	}
	if taken, err := s.repo.ExistsByPhone(ctx, in.Phone); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.E(apperr.KindConflict, "patient phone already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	p := &Patient{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return p, nil
}

// Login checks credentials and issues a token with the email as subject.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Patient, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return "", nil, apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Issue(p.Email)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return s.repo.GetByEmail(ctx, email)
}

type UpdateInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Update replaces the patient's mutable profile fields. Email and password
// are fixed at registration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.E(apperr.KindInvalid, "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperr.E(apperr.KindInvalid, "phone is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if newPhone := strings.TrimSpace(in.Phone); newPhone != p.Phone {
		if taken, err := s.repo.ExistsByPhone(ctx, newPhone); err != nil {
			return nil, apperr.Internal(err)
		} else if taken {
			return nil, apperr.E(apperr.KindConflict, "patient phone already registered")
		}
		p.Phone = newPhone
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Address = strings.TrimSpace(in.Address)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}
