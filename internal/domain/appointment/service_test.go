package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

func newTestService(t *testing.T) (*Service, *memDoctors, *memRepo) {
	t.Helper()
	doctors := newMemDoctors()
	repo := newMemRepo()
	return NewService(repo, NewEngine(doctors, repo), zerolog.Nop()), doctors, repo
}

// futureDay is far enough out that slot times are always strictly future.
func futureDay() time.Time {
	d := time.Now().AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func TestBook(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Who", "09:00", "10:00")
	patientID := uuid.New()

	a, err := svc.Book(context.Background(), patientID, d.ID, at(futureDay(), 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %v, want scheduled", a.Status)
	}
	if a.PatientID != patientID || a.DoctorID != d.ID {
		t.Errorf("wrong references: %+v", a)
	}
	if got := a.EndTime().Sub(a.AppointmentTime); got != time.Hour {
		t.Errorf("slot length = %v, want 1h", got)
	}
}

func TestBook_PastTime(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Who", "09:00")

	_, err := svc.Book(context.Background(), uuid.New(), d.ID, time.Now().Add(-time.Hour))
	if !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestBook_UnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Book(context.Background(), uuid.New(), uuid.New(), at(futureDay(), 9))
	if !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestBook_TakenSlot(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Busy", "09:00", "10:00")
	day := futureDay()

	if _, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 9)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 9))
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The losing booking must not shrink availability further.
	slots, err := svc.Availability(context.Background(), d.ID, day)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 1 || slots[0] != "10:00" {
		t.Errorf("availability = %v, want [10:00]", slots)
	}
}

func TestBook_RaceLoserGetsConflict(t *testing.T) {
	svc, doctors, repo := newTestService(t)
	d := doctors.add("Dr. Raced", "09:00")
	day := futureDay()

	// Simulate a rival request landing between pre-check and persist.
	rival := &Appointment{
		DoctorID: d.ID, PatientID: uuid.New(),
		AppointmentTime: at(day, 9), Status: StatusScheduled,
	}
	if err := repo.Create(context.Background(), rival); err != nil {
		t.Fatalf("rival booking: %v", err)
	}

	_, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 9))
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Move", "09:00", "10:00")
	patientID := uuid.New()
	day := futureDay()

	a, err := svc.Book(context.Background(), patientID, d.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	moved, err := svc.Update(context.Background(), a.ID, patientID, at(day, 10))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if moved.SlotLabel() != "10:00" {
		t.Errorf("slot = %q, want 10:00", moved.SlotLabel())
	}

	// Old slot is free again.
	slots, err := svc.Availability(context.Background(), d.ID, day)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 1 || slots[0] != "09:00" {
		t.Errorf("availability = %v, want [09:00]", slots)
	}
}

func TestUpdate_Guards(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Guard", "09:00", "10:00")
	owner := uuid.New()
	day := futureDay()

	a, err := svc.Book(context.Background(), owner, d.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Update(context.Background(), uuid.New(), owner, at(day, 10)); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown id: expected not found, got %v", err)
	}
	if _, err := svc.Update(context.Background(), a.ID, uuid.New(), at(day, 10)); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Errorf("foreign requester: expected unauthorized, got %v", err)
	}

	if _, err := svc.Complete(context.Background(), a.ID, d.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.Update(context.Background(), a.ID, owner, at(day, 10)); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("terminal status: expected conflict, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Gone", "09:00")
	owner := uuid.New()
	day := futureDay()

	a, err := svc.Book(context.Background(), owner, d.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.Cancel(context.Background(), a.ID, uuid.New()); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("foreign requester: expected unauthorized, got %v", err)
	}
	if err := svc.Cancel(context.Background(), a.ID, owner); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Slot reappears.
	slots, err := svc.Availability(context.Background(), d.ID, day)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 1 || slots[0] != "09:00" {
		t.Errorf("availability = %v, want [09:00]", slots)
	}

	// Cancelling again is NotFound, never Conflict.
	if err := svc.Cancel(context.Background(), a.ID, owner); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second cancel: expected not found, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Done", "09:00")
	day := futureDay()

	a, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Complete(context.Background(), a.ID, uuid.New()); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Errorf("foreign doctor: expected unauthorized, got %v", err)
	}

	done, err := svc.Complete(context.Background(), a.ID, d.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %v, want completed", done.Status)
	}

	if _, err := svc.Complete(context.Background(), a.ID, d.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("second complete: expected conflict, got %v", err)
	}
}

func TestQueryForDoctor_PatientNameFilter(t *testing.T) {
	svc, doctors, repo := newTestService(t)
	d := doctors.add("Dr. List", "09:00", "10:00", "11:00")
	day := futureDay()

	alice, bob := uuid.New(), uuid.New()
	repo.patientNames[alice] = "Alice Smith"
	repo.patientNames[bob] = "Bob Jones"

	if _, err := svc.Book(context.Background(), alice, d.ID, at(day, 9)); err != nil {
		t.Fatalf("book alice: %v", err)
	}
	if _, err := svc.Book(context.Background(), bob, d.ID, at(day, 10)); err != nil {
		t.Fatalf("book bob: %v", err)
	}

	all, err := svc.QueryForDoctor(context.Background(), d.ID, day, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(all))
	}
	if !all[0].AppointmentTime.Before(all[1].AppointmentTime) {
		t.Error("appointments not ordered by time")
	}

	filtered, err := svc.QueryForDoctor(context.Background(), d.ID, day, "alice smith")
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].PatientID != alice {
		t.Errorf("name filter failed: %v", filtered)
	}
}

func TestQueryForPatient_StatusFilter(t *testing.T) {
	svc, doctors, _ := newTestService(t)
	d := doctors.add("Dr. Hist", "09:00", "10:00")
	patientID := uuid.New()
	day := futureDay()

	a1, err := svc.Book(context.Background(), patientID, d.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Book(context.Background(), patientID, d.ID, at(day, 10)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Complete(context.Background(), a1.ID, d.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	completed := StatusCompleted
	past, err := svc.QueryForPatient(context.Background(), PatientQuery{PatientID: patientID, Status: &completed})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(past) != 1 || past[0].ID != a1.ID {
		t.Errorf("status filter failed: %v", past)
	}
}

func TestCancelAllForDoctor(t *testing.T) {
	svc, doctors, repo := newTestService(t)
	d := doctors.add("Dr. Leaving", "09:00", "10:00")
	other := doctors.add("Dr. Staying", "09:00")
	day := futureDay()

	if _, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 9)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Book(context.Background(), uuid.New(), d.ID, at(day, 10)); err != nil {
		t.Fatalf("book: %v", err)
	}
	kept, err := svc.Book(context.Background(), uuid.New(), other.ID, at(day, 9))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.CancelAllForDoctor(context.Background(), d.ID); err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 surviving appointment, got %d", len(repo.byID))
	}
	if _, ok := repo.byID[kept.ID]; !ok {
		t.Error("other doctor's appointment was removed")
	}
}
