package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterAdminRoutes monta el CRUD completo de medicaciones.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc))
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Put("/{medicationID}", updateMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})
}

type medicationRequest struct {
	PatientID      string `json:"patient"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Quantity       int    `json:"quantity"`
	RefillDate     string `json:"refill_date"` // YYYY-MM-DD
	RefillSchedule string `json:"refill_schedule"`
}

type medicationResponse struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient"`
	Name           string    `json:"name"`
	Dosage         string    `json:"dosage"`
	Quantity       int       `json:"quantity"`
	RefillDate     string    `json:"refill_date"`
	RefillSchedule string    `json:"refill_schedule"`
	Overdue        bool      `json:"overdue"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeMedicationInput(w, r)
		if !ok {
			return
		}

		m, err := svc.Create(r.Context(), in)
		if err != nil {
			writeMedicationError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMedicationResponse(m, time.Now()))
	}
}

func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		now := time.Now()
		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			writeError(w, http.StatusNotFound, "medication not found")
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m, time.Now()))
	}
}

func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeMedicationInput(w, r)
		if !ok {
			return
		}

		m, err := svc.Update(r.Context(), chi.URLParam(r, "medicationID"), in)
		if err != nil {
			writeMedicationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m, time.Now()))
	}
}

func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "medicationID")); err != nil {
			writeError(w, http.StatusNotFound, "medication not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeMedicationInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return Input{}, false
	}

	var refill time.Time
	if s := strings.TrimSpace(req.RefillDate); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "refill_date must be YYYY-MM-DD")
			return Input{}, false
		}
		refill = t
	}

	return Input{
		PatientID:      req.PatientID,
		Name:           req.Name,
		Dosage:         req.Dosage,
		Quantity:       req.Quantity,
		RefillDate:     refill,
		RefillSchedule: req.RefillSchedule,
	}, true
}

func writeMedicationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "medication not found")
	case errors.Is(err, ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toMedicationResponse(m Medication, now time.Time) medicationResponse {
	return medicationResponse{
		ID:             m.ID,
		PatientID:      m.PatientID,
		Name:           m.Name,
		Dosage:         m.Dosage,
		Quantity:       m.Quantity,
		RefillDate:     m.RefillDate.Format("2006-01-02"),
		RefillSchedule: m.RefillSchedule,
		Overdue:        m.OverdueAt(now),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// duplicado a propósito por módulo, ver nota en patients/handler.go
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
