package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescription (id, appointment_id, medication, dosage, notes)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.AppointmentID, p.Medication, p.Dosage, p.Notes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.KindConflict, "appointment already has a prescription")
	}
	return err
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	var p Prescription
	err := r.pool.QueryRow(ctx, `
		SELECT id, appointment_id, medication, dosage, notes, created_at
		FROM prescription WHERE appointment_id = $1`, appointmentID).
		Scan(&p.ID, &p.AppointmentID, &p.Medication, &p.Dosage, &p.Notes, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "prescription not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
