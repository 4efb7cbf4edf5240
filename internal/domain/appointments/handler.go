package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterAdminRoutes monta el CRUD completo de citas.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", listAppointmentsHandler(svc))
		ar.Post("/", createAppointmentHandler(svc))
		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Put("/{appointmentID}", updateAppointmentHandler(svc))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc))
	})
}

type appointmentRequest struct {
	PatientID       string  `json:"patient"`
	ProviderName    string  `json:"provider_name"`
	AppointmentDate string  `json:"appointment_date"` // RFC3339
	RepeatSchedule  *string `json:"repeat_schedule"`
	EndDate         *string `json:"end_date"` // YYYY-MM-DD
}

type appointmentResponse struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient"`
	ProviderName    string    `json:"provider_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	RepeatSchedule  *string   `json:"repeat_schedule"`
	EndDate         *string   `json:"end_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeAppointmentInput(w, r)
		if !ok {
			return
		}

		a, err := svc.Create(r.Context(), in)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	// vista admin: todo, sin ventana
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeAppointmentInput(w, r)
		if !ok {
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeAppointmentInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return Input{}, false
	}

	var date time.Time
	if s := strings.TrimSpace(req.AppointmentDate); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "appointment_date must be RFC3339")
			return Input{}, false
		}
		date = t
	}

	repeat := ""
	if req.RepeatSchedule != nil {
		repeat = *req.RepeatSchedule
	}

	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.EndDate))
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return Input{}, false
		}
		end = &t
	}

	return Input{
		PatientID:       req.PatientID,
		ProviderName:    req.ProviderName,
		AppointmentDate: date,
		RepeatSchedule:  repeat,
		EndDate:         end,
	}, true
}

func writeAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
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
	return appointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		ProviderName:    a.ProviderName,
		AppointmentDate: a.AppointmentDate,
		RepeatSchedule:  repeat,
		EndDate:         end,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
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
