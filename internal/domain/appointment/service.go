package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

type Service struct {
	repo   Repository
	engine *Engine
	log    zerolog.Logger
}

func NewService(repo Repository, engine *Engine, log zerolog.Logger) *Service {
	return &Service{repo: repo, engine: engine, log: log}
}

// Availability exposes the engine's free-slot computation.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]string, error) {
	return s.engine.Availability(ctx, doctorID, day)
}

// Book creates a Scheduled appointment after the engine approves the slot.
// The engine check is advisory; the storage unique index decides races, and
// a losing booking surfaces as Conflict from the repository.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time) (*Appointment, error) {
	if !at.After(time.Now()) {
		return nil, apperr.E(apperr.KindInvalid, "appointment time must be in the future")
	}
	a := &Appointment{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentTime: at,
		Status:          StatusScheduled,
	}
	verdict, err := s.engine.CheckBooking(ctx, a)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	switch verdict {
	case VerdictInvalid:
		return nil, apperr.E(apperr.KindInvalid, "doctor does not exist")
	case VerdictUnavailable:
		return nil, apperr.E(apperr.KindConflict, "slot is not available")
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor_id", doctorID.String()).
		Time("at", at).
		Msg("appointment booked")
	return a, nil
}

// Update moves a Scheduled appointment to a new future slot, re-validating
// availability with the appointment's own slot excluded.
func (s *Service) Update(ctx context.Context, id uuid.UUID, requester uuid.UUID, at time.Time) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != requester {
		return nil, apperr.E(apperr.KindUnauthorized, "appointment belongs to another patient")
	}
	if a.Status.Terminal() {
		return nil, apperr.E(apperr.KindConflict, "appointment is "+a.Status.String())
	}
	if !at.After(time.Now()) {
		return nil, apperr.E(apperr.KindInvalid, "appointment time must be in the future")
	}
	candidate := *a
	candidate.AppointmentTime = at
	verdict, err := s.engine.CheckBooking(ctx, &candidate)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	switch verdict {
	case VerdictInvalid:
		return nil, apperr.E(apperr.KindInvalid, "doctor does not exist")
	case VerdictUnavailable:
		return nil, apperr.E(apperr.KindConflict, "slot is not available")
	}
	a.AppointmentTime = at
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel removes the appointment. Only the owning patient may cancel; the
// row is deleted outright so the slot frees up immediately.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, requester uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.PatientID != requester {
		return apperr.E(apperr.KindUnauthorized, "appointment belongs to another patient")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("appointment_id", id.String()).Msg("appointment cancelled")
	return nil
}

// Complete marks a Scheduled appointment as Completed. Only the attending
// doctor may complete it.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, doctorID uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.E(apperr.KindUnauthorized, "appointment belongs to another doctor")
	}
	if a.Status.Terminal() {
		return nil, apperr.E(apperr.KindConflict, "appointment is "+a.Status.String())
	}
	a.Status = StatusCompleted
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// QueryForDoctor lists a doctor's appointments for the day, optionally
// narrowed to one patient by exact case-insensitive name.
func (s *Service) QueryForDoctor(ctx context.Context, doctorID uuid.UUID, day time.Time, patientName string) ([]*Appointment, error) {
	appts, err := s.repo.ListByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	if patientName == "" {
		return appts, nil
	}
	var out []*Appointment
	for _, a := range appts {
		if strings.EqualFold(a.PatientName, patientName) {
			out = append(out, a)
		}
	}
	return out, nil
}

// QueryForPatient lists a patient's history ordered ascending by time.
func (s *Service) QueryForPatient(ctx context.Context, q PatientQuery) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, q)
}

// CancelAllForDoctor removes every appointment for a doctor being deleted.
func (s *Service) CancelAllForDoctor(ctx context.Context, doctorID uuid.UUID) error {
	n, err := s.repo.DeleteByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info().Str("doctor_id", doctorID.String()).Int64("count", n).Msg("appointments removed with doctor")
	}
	return nil
}
