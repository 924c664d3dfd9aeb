package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, doctor_id, patient_id, appointment_time, status, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.AppointmentTime,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "appointment not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func slotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, appointment_time, status)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.DoctorID, a.PatientID, a.AppointmentTime, a.Status)
	if slotConflict(err) {
		return apperr.E(apperr.KindConflict, "slot already booked")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET appointment_time=$2, status=$3, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AppointmentTime, a.Status)
	if slotConflict(err) {
		return apperr.E(apperr.KindConflict, "slot already booked")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.KindNotFound, "appointment not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.KindNotFound, "appointment not found")
	}
	return nil
}

func (r *repoPG) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status,
		       a.created_at, a.updated_at, p.name
		FROM appointment a
		JOIN patient p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		  AND a.appointment_time >= $2 AND a.appointment_time < $3
		  AND a.status <> $4
		ORDER BY a.appointment_time`,
		doctorID, start, end, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.AppointmentTime,
			&a.Status, &a.CreatedAt, &a.UpdatedAt, &a.PatientName); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, q PatientQuery) ([]*Appointment, error) {
	query := `
		SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status,
		       a.created_at, a.updated_at, d.name
		FROM appointment a
		JOIN doctor d ON d.id = a.doctor_id
		WHERE a.patient_id = $1`
	args := []interface{}{q.PatientID}
	if q.Status != nil {
		args = append(args, *q.Status)
		query += ` AND a.status = $2`
	}
	if q.DoctorName != "" {
		args = append(args, q.DoctorName)
		if q.Status != nil {
			query += ` AND LOWER(d.name) = LOWER($3)`
		} else {
			query += ` AND LOWER(d.name) = LOWER($2)`
		}
	}
	query += ` ORDER BY a.appointment_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.AppointmentTime,
			&a.Status, &a.CreatedAt, &a.UpdatedAt, &a.DoctorName); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *repoPG) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
