package appointment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic/internal/domain/doctor"
	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

// -- in-memory collaborators shared by the engine and service tests --

type memDoctors struct {
	byID map[uuid.UUID]*doctor.Doctor
}

func newMemDoctors() *memDoctors {
	return &memDoctors{byID: make(map[uuid.UUID]*doctor.Doctor)}
}

func (m *memDoctors) add(name string, slots ...string) *doctor.Doctor {
	d := &doctor.Doctor{ID: uuid.New(), Name: name, AvailableTimes: slots}
	m.byID[d.ID] = d
	return d
}

func (m *memDoctors) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "doctor not found")
	}
	return d, nil
}

type memRepo struct {
	byID         map[uuid.UUID]*Appointment
	patientNames map[uuid.UUID]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:         make(map[uuid.UUID]*Appointment),
		patientNames: make(map[uuid.UUID]string),
	}
}

func (m *memRepo) slotTaken(a *Appointment) bool {
	for _, e := range m.byID {
		if e.ID != a.ID && e.DoctorID == a.DoctorID &&
			e.AppointmentTime.Equal(a.AppointmentTime) && e.Status != StatusCancelled {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	if a.Status != StatusCancelled && m.slotTaken(a) {
		return apperr.E(apperr.KindConflict, "slot already booked")
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.byID[a.ID]; !ok {
		return apperr.E(apperr.KindNotFound, "appointment not found")
	}
	if a.Status != StatusCancelled && m.slotTaken(a) {
		return apperr.E(apperr.KindConflict, "slot already booked")
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return apperr.E(apperr.KindNotFound, "appointment not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) ListByDoctorAndDay(_ context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var out []*Appointment
	for _, a := range m.byID {
		if a.DoctorID != doctorID || a.Status == StatusCancelled {
			continue
		}
		if a.AppointmentTime.Before(start) || !a.AppointmentTime.Before(end) {
			continue
		}
		cp := *a
		cp.PatientName = m.patientNames[a.PatientID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentTime.Before(out[j].AppointmentTime) })
	return out, nil
}

func (m *memRepo) ListByPatient(_ context.Context, q PatientQuery) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.byID {
		if a.PatientID != q.PatientID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentTime.Before(out[j].AppointmentTime) })
	return out, nil
}

func (m *memRepo) DeleteByDoctor(_ context.Context, doctorID uuid.UUID) (int64, error) {
	var n int64
	for id, a := range m.byID {
		if a.DoctorID == doctorID {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

// at builds a timestamp on the given day at the slot label's hour.
func at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
