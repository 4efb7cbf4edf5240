package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"patient-portal-api/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, first_name, last_name,
			email, password_hash,
			dob, phone, address,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.PasswordHash,
		toNullDate(p.DOB),
		p.Phone,
		p.Address,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return patients.ErrEmailTaken
	}
	return err
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			first_name = $2,
			last_name = $3,
			email = $4,
			password_hash = $5,
			dob = $6,
			phone = $7,
			address = $8,
			updated_at = $9
		WHERE id = $1
	`,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.PasswordHash,
		toNullDate(p.DOB),
		p.Phone,
		p.Address,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return patients.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, patients.ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, selectPatient+` WHERE id = $1`, id))
}

func (r *PatientsRepo) GetByEmail(ctx context.Context, email string) (patients.Patient, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return patients.Patient{}, patients.ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, selectPatient+` WHERE email = $1`, email))
}

func (r *PatientsRepo) List(ctx context.Context) ([]patients.Patient, error) {
	rows, err := r.db.QueryContext(ctx, selectPatient+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const selectPatient = `
	SELECT
		id, first_name, last_name,
		email, password_hash,
		dob, phone, address,
		created_at, updated_at
	FROM patients
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PatientsRepo) scanOne(row *sql.Row) (patients.Patient, error) {
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return patients.Patient{}, patients.ErrNotFound
		}
		return patients.Patient{}, err
	}
	return p, nil
}

func scanPatient(row rowScanner) (patients.Patient, error) {
	var p patients.Patient
	var dob sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.PasswordHash,
		&dob,
		&p.Phone,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return patients.Patient{}, err
	}
	if dob.Valid {
		t := dob.Time
		p.DOB = &t
	}
	return p, nil
}

// dob es DATE nullable, lo pasamos como NullTime
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
