package appointments

import (
	"sort"
	"time"
)

// Ventana por defecto del listado del portal de pacientes.
const DefaultWindowDays = 90

// InWindow indica si la cita cae en [now, now+days), intervalo semiabierto.
// Solo mira AppointmentDate: una serie recurrente con EndDate ya pasado
// sigue entrando si su fecha base cae en la ventana (el paciente puede
// querer ver el último registro de la serie).
func InWindow(a Appointment, now time.Time, days int) bool {
	end := now.AddDate(0, 0, days)
	return !a.AppointmentDate.Before(now) && a.AppointmentDate.Before(end)
}

// FilterUpcoming filtra las citas a la ventana de display y las ordena por
// fecha ascendente. Función pura, sin tocar el repo.
func FilterUpcoming(appts []Appointment, now time.Time, days int) []Appointment {
	if days <= 0 {
		days = DefaultWindowDays
	}

	out := make([]Appointment, 0)
	for _, a := range appts {
		if InWindow(a, now, days) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out
}
