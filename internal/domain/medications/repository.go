package medications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("medication not found")

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByPatient(ctx context.Context, patientID string) ([]Medication, error)
	ListAll(ctx context.Context) ([]Medication, error)
}
