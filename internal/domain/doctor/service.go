package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
	"github.com/clinicdesk/clinic/internal/platform/auth"
)

// AppointmentCanceller removes a doctor's appointments when the doctor is
// deleted, so patients never hold bookings against a vanished account.
type AppointmentCanceller interface {
	CancelAllForDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type Service struct {
	repo   Repository
	tokens *auth.TokenService
	appts  AppointmentCanceller
	log    zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenService, appts AppointmentCanceller, log zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, appts: appts, log: log}
}

type RegisterInput struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	Phone          string   `json:"phone"`
	AvailableTimes []string `json:"available_times"`
}

func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.E(apperr.KindInvalid, "name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperr.E(apperr.KindInvalid, "email is required")
	}
	if len(in.Password) < 8 {
		return apperr.E(apperr.KindInvalid, "password must be at least 8 characters")
	}
	return validateSlots(in.AvailableTimes)
}

func validateSlots(labels []string) error {
	for _, s := range labels {
		if !ValidSlot(s) {
			return apperr.E(apperr.KindInvalid, fmt.Sprintf("%q is not a bookable slot", s))
		}
	}
	return nil
}

// Register creates a doctor account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Doctor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.E(apperr.KindConflict, "doctor email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	d := &Doctor{
		Name:           strings.TrimSpace(in.Name),
		Specialty:      strings.TrimSpace(in.Specialty),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:   string(hash),
		Phone:          strings.TrimSpace(in.Phone),
		AvailableTimes: in.AvailableTimes,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info().Str("doctor_id", d.ID.String()).Msg("doctor registered")
	return d, nil
}

// Login checks credentials and issues a token with the email as subject.
// Unknown email and wrong password return the same error so the response
// does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Doctor, error) {
	d, err := s.repo.GetByEmail(ctx, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return "", nil, apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Issue(d.Email)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return s.repo.GetByEmail(ctx, email)
}

type UpdateInput struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Phone          string   `json:"phone"`
	AvailableTimes []string `json:"available_times"`
}

// Update replaces the doctor's mutable profile fields. Email and password
// are fixed at registration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Doctor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.E(apperr.KindInvalid, "name is required")
	}
	if err := validateSlots(in.AvailableTimes); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Name = strings.TrimSpace(in.Name)
	d.Specialty = strings.TrimSpace(in.Specialty)
	d.Phone = strings.TrimSpace(in.Phone)
	d.AvailableTimes = in.AvailableTimes
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the doctor and cancels every appointment booked against
// them. The appointments go first so a failure leaves the account intact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.appts.CancelAllForDoctor(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindInternal, "cancel doctor appointments", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("doctor_id", id.String()).Msg("doctor deleted")
	return nil
}

// maxPeriodScan bounds the in-memory pass used for period filtering.
const maxPeriodScan = 1000

// Search lists doctors matching the filter. The AM/PM period filter depends
// on offered slot labels, so when it is set the candidate rows are filtered
// in memory and re-paginated afterwards.
func (s *Service) Search(ctx context.Context, f SearchFilter, period Period, limit, offset int) ([]*Doctor, int, error) {
	if period == "" {
		return s.repo.Search(ctx, f, limit, offset)
	}
	all, _, err := s.repo.Search(ctx, f, maxPeriodScan, 0)
	if err != nil {
		return nil, 0, err
	}
	var matched []*Doctor
	for _, d := range all {
		if d.MatchesPeriod(period) {
			matched = append(matched, d)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
