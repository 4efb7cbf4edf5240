package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Medication, error) {
	out := make([]Medication, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

type testDirectory struct {
	known map[string]bool
}

func (d *testDirectory) PatientExists(ctx context.Context, id string) (bool, error) {
	return d.known[id], nil
}

type testNotifier struct {
	fired []Medication
}

func (n *testNotifier) RefillDue(ctx context.Context, m Medication) {
	n.fired = append(n.fired, m)
}

// -------------------------
// Tests
// -------------------------

var testNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestService() *Service {
	svc := NewService(newTestRepo(), &testDirectory{known: map[string]bool{"p1": true}})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestService_Create_UnknownPatient(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), Input{
		PatientID: "ghost", Name: "Lisinopril", Dosage: "10mg",
		Quantity: 30, RefillDate: testNow.AddDate(0, 0, 10),
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name string
		in   Input
	}{
		{"empty name", Input{PatientID: "p1", Dosage: "10mg", RefillDate: testNow}},
		{"empty dosage", Input{PatientID: "p1", Name: "Lisinopril", RefillDate: testNow}},
		{"negative quantity", Input{PatientID: "p1", Name: "Lisinopril", Dosage: "10mg", Quantity: -1, RefillDate: testNow}},
		{"zero refill date", Input{PatientID: "p1", Name: "Lisinopril", Dosage: "10mg"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

// Un refill_date en el pasado es dato válido: se guarda y se marca overdue,
// no se rechaza.
func TestService_Create_PastRefillDateIsOverdueNotRejected(t *testing.T) {
	svc := newTestService()

	m, err := svc.Create(context.Background(), Input{
		PatientID: "p1", Name: "Lisinopril", Dosage: "10mg",
		Quantity: 30, RefillDate: testNow.AddDate(0, 0, -5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !m.OverdueAt(testNow) {
		t.Fatal("expected past refill to be flagged overdue")
	}
}

func TestService_DueWithin_HalfOpenWindow(t *testing.T) {
	svc := newTestService()

	mk := func(name string, refill time.Time) {
		if _, err := svc.Create(context.Background(), Input{
			PatientID: "p1", Name: name, Dosage: "1x", Quantity: 1, RefillDate: refill,
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	mk("today", testNow)                       // borde inferior: incluida
	mk("in-six", testNow.AddDate(0, 0, 6))     // dentro
	mk("in-seven", testNow.AddDate(0, 0, 7))   // borde superior: excluida
	mk("overdue", testNow.AddDate(0, 0, -1))   // pasada: excluida de la ventana
	mk("far-out", testNow.AddDate(0, 0, 200))  // fuera

	due, err := svc.DueWithin(context.Background(), "p1", testNow, 7)
	if err != nil {
		t.Fatalf("due within: %v", err)
	}

	got := map[string]bool{}
	for _, m := range due {
		got[m.Name] = true
	}
	want := map[string]bool{"today": true, "in-six": true}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for name := range want {
		if !got[name] {
			t.Fatalf("expected %s in window, got %v", name, got)
		}
	}
}

func TestService_Notifier_FiredOnlyWhenDueOrOverdue(t *testing.T) {
	svc := newTestService()
	n := &testNotifier{}
	svc.SetNotifier(n)

	if _, err := svc.Create(context.Background(), Input{
		PatientID: "p1", Name: "far", Dosage: "1x", Quantity: 1,
		RefillDate: testNow.AddDate(0, 0, 60),
	}); err != nil {
		t.Fatalf("create far: %v", err)
	}
	if len(n.fired) != 0 {
		t.Fatalf("far-out refill must not notify, fired %d", len(n.fired))
	}

	if _, err := svc.Create(context.Background(), Input{
		PatientID: "p1", Name: "soon", Dosage: "1x", Quantity: 1,
		RefillDate: testNow.AddDate(0, 0, 3),
	}); err != nil {
		t.Fatalf("create soon: %v", err)
	}
	if _, err := svc.Create(context.Background(), Input{
		PatientID: "p1", Name: "late", Dosage: "1x", Quantity: 1,
		RefillDate: testNow.AddDate(0, 0, -2),
	}); err != nil {
		t.Fatalf("create late: %v", err)
	}

	if len(n.fired) != 2 {
		t.Fatalf("expected 2 notifications (soon + late), got %d", len(n.fired))
	}
}

func TestService_Update_RoundTrip(t *testing.T) {
	svc := newTestService()

	m, err := svc.Create(context.Background(), Input{
		PatientID: "p1", Name: "Lisinopril", Dosage: "10mg",
		Quantity: 30, RefillDate: testNow.AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), m.ID, Input{
		PatientID: "p1", Name: "Lisinopril", Dosage: "20mg",
		Quantity: 60, RefillDate: testNow.AddDate(0, 0, 45),
		RefillSchedule: "monthly",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Dosage != "20mg" || updated.Quantity != 60 || updated.RefillSchedule != "monthly" {
		t.Fatalf("update mismatch: %+v", updated)
	}

	got, err := svc.GetByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Dosage != "20mg" {
		t.Fatalf("persisted dosage mismatch: %q", got.Dosage)
	}
}

func TestService_Delete_UnknownID(t *testing.T) {
	svc := newTestService()

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
