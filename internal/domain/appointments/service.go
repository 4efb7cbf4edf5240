package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPatientNotFound = errors.New("patient not found")
)

// PatientDirectory valida la referencia al dueño sin importar el paquete
// patients (evita ciclos entre módulos de dominio).
type PatientDirectory interface {
	PatientExists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		now:      time.Now,
	}
}

type Input struct {
	PatientID       string
	ProviderName    string
	AppointmentDate time.Time
	RepeatSchedule  string
	EndDate         *time.Time
}

func (s *Service) Create(ctx context.Context, in Input) (Appointment, error) {
	if err := s.validate(ctx, in); err != nil {
		return Appointment{}, err
	}

	now := s.now()
	a := Appointment{
		ID:              uuid.NewString(),
		PatientID:       strings.TrimSpace(in.PatientID),
		ProviderName:    strings.TrimSpace(in.ProviderName),
		AppointmentDate: in.AppointmentDate,
		RepeatSchedule:  strings.TrimSpace(in.RepeatSchedule),
		EndDate:         in.EndDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Appointment, error) {
	current, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, err
	}
	if err := s.validate(ctx, in); err != nil {
		return Appointment{}, err
	}

	current.PatientID = strings.TrimSpace(in.PatientID)
	current.ProviderName = strings.TrimSpace(in.ProviderName)
	current.AppointmentDate = in.AppointmentDate
	current.RepeatSchedule = strings.TrimSpace(in.RepeatSchedule)
	current.EndDate = in.EndDate
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Appointment{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListAll es la vista admin: todas las citas de todos los pacientes, sin
// ventana y sin orden garantizado.
func (s *Service) ListAll(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListAll(ctx)
}

// ListUpcoming devuelve las citas del paciente en [now, now+windowDays),
// ordenadas por fecha ascendente. windowDays <= 0 usa la ventana default.
func (s *Service) ListUpcoming(ctx context.Context, patientID string, now time.Time, windowDays int) ([]Appointment, error) {
	all, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return FilterUpcoming(all, now, windowDays), nil
}

func (s *Service) validate(ctx context.Context, in Input) error {
	if strings.TrimSpace(in.ProviderName) == "" {
		return ErrInvalidInput
	}
	if in.AppointmentDate.IsZero() {
		return ErrInvalidInput
	}
	// una cita única no tiene end date
	if in.EndDate != nil && strings.TrimSpace(in.RepeatSchedule) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(in.PatientID) == "" {
		return ErrPatientNotFound
	}

	ok, err := s.patients.PatientExists(ctx, in.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatientNotFound
	}
	return nil
}
