package appointments

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Appointment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Appointment, error) {
	out := make([]Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

type testDirectory struct {
	known map[string]bool
}

func (d *testDirectory) PatientExists(ctx context.Context, id string) (bool, error) {
	return d.known[id], nil
}

var svcNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestService() *Service {
	svc := NewService(newTestRepo(), &testDirectory{known: map[string]bool{"p1": true, "p2": true}})
	svc.now = func() time.Time { return svcNow }
	return svc
}

func TestService_Create_EndDateRequiresRepeatSchedule(t *testing.T) {
	svc := newTestService()
	end := svcNow.AddDate(0, 6, 0)

	_, err := svc.Create(context.Background(), Input{
		PatientID: "p1", ProviderName: "Dr. Soto",
		AppointmentDate: svcNow.AddDate(0, 0, 10),
		EndDate:         &end, // sin repeat_schedule
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// con repeat_schedule la misma cita es válida
	a, err := svc.Create(context.Background(), Input{
		PatientID: "p1", ProviderName: "Dr. Soto",
		AppointmentDate: svcNow.AddDate(0, 0, 10),
		RepeatSchedule:  "monthly",
		EndDate:         &end,
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}
	if !a.Recurring() {
		t.Fatal("expected recurring appointment")
	}
}

func TestService_Create_UnknownPatient(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), Input{
		PatientID: "ghost", ProviderName: "Dr. Soto",
		AppointmentDate: svcNow.AddDate(0, 0, 10),
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestService_Create_RequiresProviderAndDate(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), Input{
		PatientID: "p1", AppointmentDate: svcNow,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing provider: expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Create(context.Background(), Input{
		PatientID: "p1", ProviderName: "Dr. Soto",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero date: expected ErrInvalidInput, got %v", err)
	}
}

// ListUpcoming filtra por paciente y por ventana: las citas de otros
// pacientes y las fuera de rango no aparecen.
func TestService_ListUpcoming_WindowAndOwnership(t *testing.T) {
	svc := newTestService()

	mk := func(patientID string, offsetDays int) Appointment {
		a, err := svc.Create(context.Background(), Input{
			PatientID: patientID, ProviderName: "Dr. Soto",
			AppointmentDate: svcNow.AddDate(0, 0, offsetDays),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return a
	}

	soon := mk("p1", 10)
	mk("p1", 200) // fuera de la ventana de 90 días
	mk("p2", 10)  // otro paciente

	got, err := svc.ListUpcoming(context.Background(), "p1", svcNow, DefaultWindowDays)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(got) != 1 || got[0].ID != soon.ID {
		t.Fatalf("expected exactly the 10-day appointment, got %+v", got)
	}
}

func TestService_Update_RoundTrip(t *testing.T) {
	svc := newTestService()

	a, err := svc.Create(context.Background(), Input{
		PatientID: "p1", ProviderName: "Dr. Soto",
		AppointmentDate: svcNow.AddDate(0, 0, 10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), a.ID, Input{
		PatientID: "p1", ProviderName: "Dra. Vidal",
		AppointmentDate: svcNow.AddDate(0, 0, 20),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ProviderName != "Dra. Vidal" {
		t.Fatalf("provider mismatch: %q", updated.ProviderName)
	}

	got, err := svc.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.AppointmentDate.Equal(svcNow.AddDate(0, 0, 20)) {
		t.Fatalf("persisted date mismatch: %s", got.AppointmentDate)
	}
}

func TestService_Delete_UnknownID(t *testing.T) {
	svc := newTestService()

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
