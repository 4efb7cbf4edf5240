package appointments

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)
}
