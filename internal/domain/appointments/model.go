package appointments

import "time"

// Appointment es una visita agendada de un paciente. Una cita recurrente es
// UN registro que describe el patrón: RepeatSchedule es una etiqueta
// descriptiva ("weekly", "monthly") y nunca se expande en ocurrencias.
type Appointment struct {
	ID        string
	PatientID string

	ProviderName    string
	AppointmentDate time.Time

	// RepeatSchedule vacío = cita única.
	RepeatSchedule string
	// EndDate solo tiene sentido si RepeatSchedule está seteado.
	EndDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recurring indica si el registro describe una serie recurrente.
func (a Appointment) Recurring() bool {
	return a.RepeatSchedule != ""
}
