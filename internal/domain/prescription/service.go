package prescription

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic/internal/domain/appointment"
	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

// AppointmentSource is the slice of the appointment service used to verify
// the referenced appointment and its attending doctor.
type AppointmentSource interface {
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type Service struct {
	repo  Repository
	appts AppointmentSource
	log   zerolog.Logger
}

func NewService(repo Repository, appts AppointmentSource, log zerolog.Logger) *Service {
	return &Service{repo: repo, appts: appts, log: log}
}

type SaveInput struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	Notes         string    `json:"notes"`
}

// Save writes the prescription for an appointment. The attending doctor is
// the only allowed author, and a second save for the same appointment is a
// Conflict with the first row untouched.
func (s *Service) Save(ctx context.Context, doctorID uuid.UUID, in SaveInput) (*Prescription, error) {
	if strings.TrimSpace(in.Medication) == "" {
		return nil, apperr.E(apperr.KindInvalid, "medication is required")
	}
	a, err := s.appts.Get(ctx, in.AppointmentID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, apperr.E(apperr.KindInvalid, "appointment does not exist")
	}
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.E(apperr.KindUnauthorized, "appointment belongs to another doctor")
	}
	p := &Prescription{
		AppointmentID: in.AppointmentID,
		Medication:    strings.TrimSpace(in.Medication),
		Dosage:        strings.TrimSpace(in.Dosage),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("prescription_id", p.ID.String()).
		Str("appointment_id", in.AppointmentID.String()).
		Msg("prescription saved")
	return p, nil
}

// GetByAppointment returns the appointment's prescription, restricted to
// the attending doctor.
func (s *Service) GetByAppointment(ctx context.Context, doctorID, appointmentID uuid.UUID) (*Prescription, error) {
	a, err := s.appts.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.E(apperr.KindUnauthorized, "appointment belongs to another doctor")
	}
	return s.repo.GetByAppointment(ctx, appointmentID)
}
