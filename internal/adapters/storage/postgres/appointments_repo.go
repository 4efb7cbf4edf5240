package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"patient-portal-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, patient_id,
			provider_name, appointment_date,
			repeat_schedule, end_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.PatientID,
		a.ProviderName,
		a.AppointmentDate,
		nullString(a.RepeatSchedule),
		toNullDate(a.EndDate),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			patient_id = $2,
			provider_name = $3,
			appointment_date = $4,
			repeat_schedule = $5,
			end_date = $6,
			updated_at = $7
		WHERE id = $1
	`,
		a.ID,
		a.PatientID,
		a.ProviderName,
		a.AppointmentDate,
		nullString(a.RepeatSchedule),
		toNullDate(a.EndDate),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, appointments.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectAppointment+` WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) ListByPatient(ctx context.Context, patientID string) ([]appointments.Appointment, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}
	return r.list(ctx, selectAppointment+` WHERE patient_id = $1`, patientID)
}

func (r *AppointmentsRepo) ListAll(ctx context.Context) ([]appointments.Appointment, error) {
	return r.list(ctx, selectAppointment)
}

const selectAppointment = `
	SELECT
		id, patient_id,
		provider_name, appointment_date,
		repeat_schedule, end_date,
		created_at, updated_at
	FROM appointments
`

func (r *AppointmentsRepo) list(ctx context.Context, query string, args ...any) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var repeat sql.NullString
	var end sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProviderName,
		&a.AppointmentDate,
		&repeat,
		&end,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}
	if repeat.Valid {
		a.RepeatSchedule = repeat.String
	}
	if end.Valid {
		t := end.Time
		a.EndDate = &t
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
