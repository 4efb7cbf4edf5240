package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials es el único error de login: mismo mensaje para
	// email desconocido y contraseña incorrecta (no filtrar enumeración).
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	DOB       *time.Time
	Phone     string
	Address   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Patient, error) {
	if strings.TrimSpace(in.FirstName) == "" ||
		strings.TrimSpace(in.LastName) == "" ||
		strings.TrimSpace(in.Email) == "" {
		return Patient{}, ErrInvalidInput
	}
	// password obligatoria al crear
	if in.Password == "" {
		return Patient{}, ErrInvalidInput
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Patient{}, err
	}

	now := s.now()
	p := Patient{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		DOB:          in.DOB,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	// Password vacía = conservar la credencial actual.
	Password string
	DOB      *time.Time
	Phone    string
	Address  string
}

// Update reemplaza los campos mutables del paciente. La credencial solo se
// reemplaza si viene una password no vacía; nunca se pisa con vacío.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Patient, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}
	if strings.TrimSpace(in.FirstName) == "" ||
		strings.TrimSpace(in.LastName) == "" ||
		strings.TrimSpace(in.Email) == "" {
		return Patient{}, ErrInvalidInput
	}

	current.FirstName = strings.TrimSpace(in.FirstName)
	current.LastName = strings.TrimSpace(in.LastName)
	current.Email = normalizeEmail(in.Email)
	current.DOB = in.DOB
	current.Phone = strings.TrimSpace(in.Phone)
	current.Address = strings.TrimSpace(in.Address)
	current.UpdatedAt = s.now()

	if strings.TrimSpace(in.Password) != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return Patient{}, err
		}
		current.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return Patient{}, err
	}
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.List(ctx)
}

// Authenticate resuelve email+password a un paciente. Cualquier fallo
// (email desconocido, password incorrecta) devuelve ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Patient, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Patient{}, ErrInvalidCredentials
	}

	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return Patient{}, ErrInvalidCredentials
	}
	if !CheckPassword(p.PasswordHash, password) {
		return Patient{}, ErrInvalidCredentials
	}
	return p, nil
}

// PatientExists lo usan medications/appointments para validar la referencia
// al dueño sin acoplar esos módulos a este paquete.
func (s *Service) PatientExists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
