package patients

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("patient not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	GetByEmail(ctx context.Context, email string) (Patient, error)
	List(ctx context.Context) ([]Patient, error)
}
