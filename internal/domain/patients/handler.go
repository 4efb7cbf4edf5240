package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"patient-portal-api/internal/domain/appointments"
	"patient-portal-api/internal/domain/medications"
)

// RegisterAdminRoutes monta el CRU de pacientes (sin delete: chi responde
// 405 a DELETE porque la ruta existe con otros métodos).
func RegisterAdminRoutes(r chi.Router, svc *Service, meds *medications.Service, appts *appointments.Service) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Get("/", listPatientsHandler(svc))
		pr.Post("/", createPatientHandler(svc))
		pr.Get("/{patientID}", getPatientHandler(svc, meds, appts))
		pr.Put("/{patientID}", updatePatientHandler(svc))
	})
}

type patientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	DOB       string `json:"dob"` // YYYY-MM-DD, opcional
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type patientResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	DOB       *string   `json:"dob"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// detalle admin: el paciente con sus medicaciones y citas embebidas
type patientDetailResponse struct {
	patientResponse
	Medications  []medicationItem  `json:"medications"`
	Appointments []appointmentItem `json:"appointments"`
}

type medicationItem struct {
	ID             string `json:"id"`
	PatientID      string `json:"patient"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Quantity       int    `json:"quantity"`
	RefillDate     string `json:"refill_date"`
	RefillSchedule string `json:"refill_schedule"`
	Overdue        bool   `json:"overdue"`
}

type appointmentItem struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient"`
	ProviderName    string    `json:"provider_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	RepeatSchedule  *string   `json:"repeat_schedule"`
	EndDate         *string   `json:"end_date"`
}

func createPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		dob, err := parseDOB(req.DOB)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dob must be YYYY-MM-DD")
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password,
			DOB:       dob,
			Phone:     req.Phone,
			Address:   req.Address,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmailTaken):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func listPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(svc *Service, meds *medications.Service, appts *appointments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "patientID")
		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "patient not found")
			return
		}

		ms, err := meds.ListByPatient(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		as, err := appts.ListByPatient(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		now := time.Now()
		detail := patientDetailResponse{
			patientResponse: toPatientResponse(p),
			Medications:     make([]medicationItem, 0, len(ms)),
			Appointments:    make([]appointmentItem, 0, len(as)),
		}
		for _, m := range ms {
			detail.Medications = append(detail.Medications, toMedicationItem(m, now))
		}
		for _, a := range as {
			detail.Appointments = append(detail.Appointments, toAppointmentItem(a))
		}

		writeJSON(w, http.StatusOK, detail)
	}
}

func updatePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "patientID")

		var req patientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		dob, err := parseDOB(req.DOB)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dob must be YYYY-MM-DD")
			return
		}

		p, err := svc.Update(r.Context(), id, UpdateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password, // vacía = conservar credencial
			DOB:       dob,
			Phone:     req.Phone,
			Address:   req.Address,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				writeError(w, http.StatusNotFound, "patient not found")
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmailTaken):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func toPatientResponse(p Patient) patientResponse {
	var dob *string
	if p.DOB != nil {
		s := p.DOB.Format("2006-01-02")
		dob = &s
	}
	return patientResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		DOB:       dob,
		Phone:     p.Phone,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toMedicationItem(m medications.Medication, now time.Time) medicationItem {
	return medicationItem{
		ID:             m.ID,
		PatientID:      m.PatientID,
		Name:           m.Name,
		Dosage:         m.Dosage,
		Quantity:       m.Quantity,
		RefillDate:     m.RefillDate.Format("2006-01-02"),
		RefillSchedule: m.RefillSchedule,
		Overdue:        m.OverdueAt(now),
	}
}

func toAppointmentItem(a appointments.Appointment) appointmentItem {
	var repeat *string
	if a.RepeatSchedule != "" {
		r := a.RepeatSchedule
		repeat = &r
	}
	var end *string
	if a.EndDate != nil {
		e := a.EndDate.Format("2006-01-02")
		end = &e
	}
	return appointmentItem{
		ID:              a.ID,
		PatientID:       a.PatientID,
		ProviderName:    a.ProviderName,
		AppointmentDate: a.AppointmentDate,
		RepeatSchedule:  repeat,
		EndDate:         end,
	}
}

func parseDOB(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeJSON/writeError están duplicados a propósito en los handlers de cada
// módulo, igual que en el resto del proyecto: todavía no amerita un paquete
// compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
