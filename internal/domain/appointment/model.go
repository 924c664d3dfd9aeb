package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed length of every appointment.
const SlotDuration = time.Hour

// Status tracks the appointment lifecycle. Scheduled can move to Completed
// or Cancelled; both of those are terminal.
type Status int

const (
	StatusScheduled Status = 0
	StatusCompleted Status = 1
	StatusCancelled Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus accepts the status name or its historical numeric form.
// "past" and "future" are aliases used by patient history views.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(v) {
	case "scheduled", "0", "future":
		return StatusScheduled, nil
	case "completed", "1", "past":
		return StatusCompleted, nil
	case "cancelled", "2":
		return StatusCancelled, nil
	default:
		return 0, fmt.Errorf("unknown status %q", v)
	}
}

// Appointment maps to the appointment table. DoctorName and PatientName are
// joined in by list queries and never written back.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	AppointmentTime time.Time `db:"appointment_time" json:"appointment_time"`
	Status          Status    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// EndTime is the derived end of the fixed-length slot.
func (a *Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(SlotDuration)
}

// SlotLabel truncates the start time to the catalog label form ("09:00").
func (a *Appointment) SlotLabel() string {
	return a.AppointmentTime.Format("15:04")
}

// Day returns the midnight of the appointment's calendar day, keeping the
// stored location.
func (a *Appointment) Day() time.Time {
	y, m, d := a.AppointmentTime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.AppointmentTime.Location())
}
