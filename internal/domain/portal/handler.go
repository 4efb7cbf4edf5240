package portal

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"patient-portal-api/internal/domain/appointments"
	"patient-portal-api/internal/domain/medications"
	"patient-portal-api/internal/domain/patients"
	"patient-portal-api/internal/middleware"
	"patient-portal-api/internal/ports/auth"
)

// ventana del summary del dashboard (citas + refills próximos)
const summaryWindowDays = 7

// LoginHandler resuelve email+password a una sesión de paciente.
// Credenciales malas devuelven siempre el mismo 401, sin distinguir email
// desconocido de password incorrecta.
func LoginHandler(svc *patients.Service, issuer auth.SessionIssuer) http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type loginResponse struct {
		Token     string `json:"token"`
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		tok, err := issuer.Issue(r.Context(), auth.Claims{
			PatientID: p.ID,
			Email:     p.Email,
			Role:      auth.RolePatient,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			Token:     tok,
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		})
	}
}

// AdminLoginHandler emite la sesión admin contra las credenciales
// configuradas. Sin ADMIN_EMAIL/ADMIN_PASSWORD_HASH no hay admin posible.
func AdminLoginHandler(issuer auth.SessionIssuer, adminEmail, adminPasswordHash string) http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type loginResponse struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if adminEmail == "" || adminPasswordHash == "" ||
			email != adminEmail ||
			!patients.CheckPassword(adminPasswordHash, req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		tok, err := issuer.Issue(r.Context(), auth.Claims{
			Email: email,
			Role:  auth.RoleAdmin,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{Token: tok, Email: email})
	}
}

// RegisterRoutes monta las lecturas self-scoped del portal. El router las
// envuelve con RequirePatient; acá solo queda el chequeo de ownership:
// el {patientID} del path tiene que coincidir con la sesión, si no 403
// (nunca 404: "no es tuyo" no es "no existe").
func RegisterRoutes(r chi.Router, patientsSvc *patients.Service, medsSvc *medications.Service, apptsSvc *appointments.Service) {
	r.Get("/summary/{patientID}", summaryHandler(patientsSvc, medsSvc, apptsSvc))
	r.Get("/appointments/{patientID}", myAppointmentsHandler(apptsSvc))
	r.Get("/medications/{patientID}", myMedicationsHandler(medsSvc))
}

type patientProfile struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	DOB       *string `json:"dob"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
}

type medicationView struct {
	ID             string `json:"id"`
	PatientID      string `json:"patient"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Quantity       int    `json:"quantity"`
	RefillDate     string `json:"refill_date"`
	RefillSchedule string `json:"refill_schedule"`
	Overdue        bool   `json:"overdue"`
}

type appointmentView struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient"`
	ProviderName    string    `json:"provider_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	RepeatSchedule  *string   `json:"repeat_schedule"`
	EndDate         *string   `json:"end_date"`
}

type summaryResponse struct {
	Patient      patientProfile    `json:"patient"`
	Appointments []appointmentView `json:"appointments"`
	Medications  []medicationView  `json:"medications"`
}

// summaryHandler arma el dashboard: perfil + citas y refills de los
// próximos 7 días. El perfil sirve para refrescar la sesión cacheada del
// cliente sin re-login.
func summaryHandler(patientsSvc *patients.Service, medsSvc *medications.Service, apptsSvc *appointments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := ownPatientID(w, r)
		if !ok {
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), patientID)
		if err != nil {
			writeError(w, http.StatusNotFound, "patient not found")
			return
		}

		now := time.Now()
		appts, err := apptsSvc.ListUpcoming(r.Context(), patientID, now, summaryWindowDays)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		meds, err := medsSvc.DueWithin(r.Context(), patientID, now, summaryWindowDays)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := summaryResponse{
			Patient:      toPatientProfile(p),
			Appointments: make([]appointmentView, 0, len(appts)),
			Medications:  make([]medicationView, 0, len(meds)),
		}
		for _, a := range appts {
			out.Appointments = append(out.Appointments, toAppointmentView(a))
		}
		for _, m := range meds {
			out.Medications = append(out.Medications, toMedicationView(m, now))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// myAppointmentsHandler lista las citas propias en la ventana de display
// de 90 días, orden ascendente por fecha.
func myAppointmentsHandler(svc *appointments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := ownPatientID(w, r)
		if !ok {
			return
		}

		items, err := svc.ListUpcoming(r.Context(), patientID, time.Now(), appointments.DefaultWindowDays)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]appointmentView, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentView(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func myMedicationsHandler(svc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := ownPatientID(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		now := time.Now()
		out := make([]medicationView, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationView(m, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ownPatientID deriva la identidad de la sesión verificada, nunca del
// caller. El path param solo se valida contra ella.
func ownPatientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.PatientID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	if pathID := chi.URLParam(r, "patientID"); pathID != claims.PatientID {
		writeError(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return claims.PatientID, true
}

func toPatientProfile(p patients.Patient) patientProfile {
	var dob *string
	if p.DOB != nil {
		s := p.DOB.Format("2006-01-02")
		dob = &s
	}
	return patientProfile{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		DOB:       dob,
		Phone:     p.Phone,
		Address:   p.Address,
	}
}

func toMedicationView(m medications.Medication, now time.Time) medicationView {
	return medicationView{
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

func toAppointmentView(a appointments.Appointment) appointmentView {
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
	return appointmentView{
		ID:              a.ID,
		PatientID:       a.PatientID,
		ProviderName:    a.ProviderName,
		AppointmentDate: a.AppointmentDate,
		RepeatSchedule:  repeat,
		EndDate:         end,
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
