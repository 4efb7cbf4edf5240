package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"patient-portal-api/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, patient_id,
			name, dosage, quantity,
			refill_date, refill_schedule,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.PatientID,
		m.Name,
		m.Dosage,
		m.Quantity,
		m.RefillDate,
		m.RefillSchedule,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			patient_id = $2,
			name = $3,
			dosage = $4,
			quantity = $5,
			refill_date = $6,
			refill_schedule = $7,
			updated_at = $8
		WHERE id = $1
	`,
		m.ID,
		m.PatientID,
		m.Name,
		m.Dosage,
		m.Quantity,
		m.RefillDate,
		m.RefillSchedule,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectMedication+` WHERE id = $1`, id)
	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByPatient(ctx context.Context, patientID string) ([]medications.Medication, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}
	return r.list(ctx, selectMedication+` WHERE patient_id = $1 ORDER BY refill_date ASC`, patientID)
}

func (r *MedicationsRepo) ListAll(ctx context.Context) ([]medications.Medication, error) {
	return r.list(ctx, selectMedication+` ORDER BY refill_date ASC`)
}

const selectMedication = `
	SELECT
		id, patient_id,
		name, dosage, quantity,
		refill_date, refill_schedule,
		created_at, updated_at
	FROM medications
`

func (r *MedicationsRepo) list(ctx context.Context, query string, args ...any) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	if err := row.Scan(
		&m.ID,
		&m.PatientID,
		&m.Name,
		&m.Dosage,
		&m.Quantity,
		&m.RefillDate,
		&m.RefillSchedule,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}
	return m, nil
}
