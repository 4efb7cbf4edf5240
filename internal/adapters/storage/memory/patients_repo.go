package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"patient-portal-api/internal/domain/patients"
)

type patientsRepo struct {
	mu      sync.RWMutex
	byID    map[string]patients.Patient
	byEmail map[string]string // email -> id
}

func NewPatientsRepo() patients.Repository {
	return &patientsRepo{
		byID:    make(map[string]patients.Patient),
		byEmail: make(map[string]string),
	}
}

func (r *patientsRepo) Create(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("patient already exists")
	}
	if _, taken := r.byEmail[p.Email]; taken {
		return patients.ErrEmailTaken
	}

	r.byID[p.ID] = p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *patientsRepo) Update(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[p.ID]
	if !exists {
		return patients.ErrNotFound
	}
	// email único también al actualizar
	if owner, taken := r.byEmail[p.Email]; taken && owner != p.ID {
		return patients.ErrEmailTaken
	}

	if current.Email != p.Email {
		delete(r.byEmail, current.Email)
	}
	r.byID[p.ID] = p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *patientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return patients.Patient{}, patients.ErrNotFound
	}
	return p, nil
}

func (r *patientsRepo) GetByEmail(ctx context.Context, email string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return patients.Patient{}, patients.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *patientsRepo) List(ctx context.Context) ([]patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}

	// orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
