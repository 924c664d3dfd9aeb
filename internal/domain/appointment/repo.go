package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PatientQuery filters a patient's appointment history. Nil Status means
// all statuses; DoctorName is a case-insensitive exact match.
type PatientQuery struct {
	PatientID  uuid.UUID
	Status     *Status
	DoctorName string
}

type Repository interface {
	// Create persists a new appointment. A unique-violation on the
	// doctor+slot index surfaces as a Conflict error.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update rewrites time and status, subject to the same slot index.
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDoctorAndDay returns non-cancelled appointments for the doctor
	// in [day, day+24h), ordered by time, with patient names joined in.
	ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error)
	// ListByPatient returns the patient's appointments ordered ascending by
	// time, with doctor names joined in.
	ListByPatient(ctx context.Context, q PatientQuery) ([]*Appointment, error)
	// DeleteByDoctor removes every appointment for the doctor and reports
	// how many went away. Used by the doctor-deletion cascade.
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}
