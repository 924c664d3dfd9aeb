package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create fails with Conflict if the appointment already has a
	// prescription, leaving the existing row untouched.
	Create(ctx context.Context, p *Prescription) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error)
}
