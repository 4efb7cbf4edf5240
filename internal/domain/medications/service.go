package medications

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

// PatientDirectory valida la referencia al paciente dueño sin acoplar este
// módulo al paquete patients (mismo truco que OwnerOf en otros módulos).
type PatientDirectory interface {
	PatientExists(ctx context.Context, id string) (bool, error)
}

// Notifier recibe avisos best-effort de refills próximos o vencidos.
type Notifier interface {
	RefillDue(ctx context.Context, m Medication)
}

// días hacia adelante que disparan un aviso de refill
const reminderWindowDays = 7

type Service struct {
	repo     Repository
	patients PatientDirectory
	notifier Notifier // opcional
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		now:      time.Now,
	}
}

// SetNotifier habilita los avisos de refill. nil los apaga.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

type Input struct {
	PatientID      string
	Name           string
	Dosage         string
	Quantity       int
	RefillDate     time.Time
	RefillSchedule string
}

func (s *Service) Create(ctx context.Context, in Input) (Medication, error) {
	if err := s.validate(ctx, in); err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := Medication{
		ID:             uuid.NewString(),
		PatientID:      strings.TrimSpace(in.PatientID),
		Name:           strings.TrimSpace(in.Name),
		Dosage:         strings.TrimSpace(in.Dosage),
		Quantity:       in.Quantity,
		RefillDate:     in.RefillDate,
		RefillSchedule: strings.TrimSpace(in.RefillSchedule),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}

	s.maybeNotify(ctx, m)
	return m, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Medication, error) {
	current, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Medication{}, err
	}
	if err := s.validate(ctx, in); err != nil {
		return Medication{}, err
	}

	current.PatientID = strings.TrimSpace(in.PatientID)
	current.Name = strings.TrimSpace(in.Name)
	current.Dosage = strings.TrimSpace(in.Dosage)
	current.Quantity = in.Quantity
	current.RefillDate = in.RefillDate
	current.RefillSchedule = strings.TrimSpace(in.RefillSchedule)
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Medication{}, err
	}

	s.maybeNotify(ctx, current)
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Medication, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListAll(ctx context.Context) ([]Medication, error) {
	return s.repo.ListAll(ctx)
}

// DueWithin devuelve las medicaciones del paciente con refill en
// [now, now+days). Lo usa el summary del portal (ventana de 7 días).
func (s *Service) DueWithin(ctx context.Context, patientID string, now time.Time, days int) ([]Medication, error) {
	all, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	out := make([]Medication, 0)
	for _, m := range all {
		if m.DueWithin(now, days) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) validate(ctx context.Context, in Input) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Dosage) == "" {
		return ErrInvalidInput
	}
	if in.Quantity < 0 {
		return ErrInvalidInput
	}
	if in.RefillDate.IsZero() {
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

func (s *Service) maybeNotify(ctx context.Context, m Medication) {
	if s.notifier == nil {
		return
	}
	now := s.now()
	if m.OverdueAt(now) || m.DueWithin(now, reminderWindowDays) {
		s.notifier.RefillDue(ctx, m)
	}
}
