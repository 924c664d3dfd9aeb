package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic/internal/domain/doctor"
	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

// DoctorSource is the slice of the doctor repository the engine needs.
type DoctorSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// Verdict is the three-way outcome of a booking check. A bad doctor
// reference and a taken slot map to different error categories, so a
// boolean would lose information the handler needs.
type Verdict int

const (
	VerdictInvalid Verdict = iota
	VerdictUnavailable
	VerdictOK
)

func (v Verdict) String() string {
	switch v {
	case VerdictInvalid:
		return "invalid"
	case VerdictUnavailable:
		return "unavailable"
	default:
		return "ok"
	}
}

// Engine computes free slots and adjudicates booking requests. It holds no
// state of its own; correctness under concurrent bookings comes from the
// storage-level unique index, the engine is the fast pre-check.
type Engine struct {
	doctors DoctorSource
	appts   Repository
}

func NewEngine(doctors DoctorSource, appts Repository) *Engine {
	return &Engine{doctors: doctors, appts: appts}
}

// Availability returns the doctor's offered slots minus those occupied by a
// non-cancelled appointment on the given day, in catalog order.
func (e *Engine) Availability(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]string, error) {
	d, err := e.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	occupied, err := e.occupiedSlots(ctx, doctorID, day, uuid.Nil)
	if err != nil {
		return nil, err
	}
	var free []string
	for _, s := range d.OfferedSlots() {
		if !occupied[s] {
			free = append(free, s)
		}
	}
	return free, nil
}

// CheckBooking adjudicates the requested slot. When re-checking an update,
// the appointment's own ID excludes its current slot from occupancy.
func (e *Engine) CheckBooking(ctx context.Context, a *Appointment) (Verdict, error) {
	d, err := e.doctors.GetByID(ctx, a.DoctorID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return VerdictInvalid, nil
	}
	if err != nil {
		return VerdictInvalid, err
	}
	label := a.SlotLabel()
	if !doctor.ValidSlot(label) || !d.OffersSlot(label) {
		return VerdictUnavailable, nil
	}
	occupied, err := e.occupiedSlots(ctx, a.DoctorID, a.AppointmentTime, a.ID)
	if err != nil {
		return VerdictInvalid, err
	}
	if occupied[label] {
		return VerdictUnavailable, nil
	}
	return VerdictOK, nil
}

func (e *Engine) occupiedSlots(ctx context.Context, doctorID uuid.UUID, day time.Time, exclude uuid.UUID) (map[string]bool, error) {
	appts, err := e.appts.ListByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	occupied := make(map[string]bool, len(appts))
	for _, a := range appts {
		if a.ID == exclude || a.Status == StatusCancelled {
			continue
		}
		occupied[a.SlotLabel()] = true
	}
	return occupied, nil
}
