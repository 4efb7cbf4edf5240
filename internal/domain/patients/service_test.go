package patients

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID    map[string]Patient
	byEmail map[string]string
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:    map[string]Patient{},
		byEmail: map[string]string{},
	}
}

func (r *testRepo) Create(ctx context.Context, p Patient) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	if _, taken := r.byEmail[p.Email]; taken {
		return ErrEmailTaken
	}
	r.byID[p.ID] = p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Patient) error {
	current, ok := r.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.byEmail[p.Email]; taken && owner != p.ID {
		return ErrEmailTaken
	}
	if current.Email != p.Email {
		delete(r.byEmail, current.Email)
	}
	r.byID[p.ID] = p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (Patient, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *testRepo) List(ctx context.Context) ([]Patient, error) {
	out := make([]Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestService_Create_RoundTrip_NeverStoresCleartext(t *testing.T) {
	svc := newTestService(newTestRepo())

	created, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana",
		LastName:  "Reyes",
		Email:     "Ana@X.com",
		Password:  "pw1",
		Phone:     "555-0101",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Email != "ana@x.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstName != "Ana" || got.LastName != "Reyes" || got.Phone != "555-0101" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.PasswordHash == "pw1" || got.PasswordHash == "" {
		t.Fatal("password must be stored only as a hash")
	}
	if !CheckPassword(got.PasswordHash, "pw1") {
		t.Fatal("stored hash must verify the original password")
	}
}

func TestService_Create_RequiresPassword(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana",
		LastName:  "Reyes",
		Email:     "ana@x.com",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana", LastName: "Reyes", Email: "ana@x.com", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		FirstName: "Otra", LastName: "Ana", Email: "ANA@x.com", Password: "pw2",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Authenticate_NoEnumerationLeak(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana", LastName: "Reyes", Email: "a@x.com", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("expected login ok, got %v", err)
	}

	_, wrongPw := svc.Authenticate(context.Background(), "a@x.com", "wrong")
	_, unknown := svc.Authenticate(context.Background(), "nobody@x.com", "pw1")

	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials in both cases, got %v / %v", wrongPw, unknown)
	}
	// mismo error para ambos casos: no distinguir email desconocido
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("credential errors must be indistinguishable: %q vs %q", wrongPw, unknown)
	}
}

func TestService_Update_BlankPasswordPreservesCredential(t *testing.T) {
	svc := newTestService(newTestRepo())

	created, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana", LastName: "Reyes", Email: "a@x.com", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{
		FirstName: "Ana María",
		LastName:  "Reyes",
		Email:     "a@x.com",
		Password:  "", // conservar credencial
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("old password must still authenticate after blank-password update: %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{
		FirstName: "Ana María",
		LastName:  "Reyes",
		Email:     "a@x.com",
		Password:  "pw2",
	})
	if err != nil {
		t.Fatalf("update with new password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "a@x.com", "pw2"); err != nil {
		t.Fatalf("new password must authenticate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "a@x.com", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop authenticating, got %v", err)
	}
}

func TestService_Update_UnknownID(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Update(context.Background(), "missing", UpdateInput{
		FirstName: "X", LastName: "Y", Email: "x@y.com",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_PatientExists(t *testing.T) {
	svc := newTestService(newTestRepo())

	created, err := svc.Create(context.Background(), CreateInput{
		FirstName: "Ana", LastName: "Reyes", Email: "a@x.com", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := svc.PatientExists(context.Background(), created.ID)
	if err != nil || !ok {
		t.Fatalf("expected exists=true, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.PatientExists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected exists=false, got ok=%v err=%v", ok, err)
	}
}
