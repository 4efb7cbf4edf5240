package medications

import "time"

// Medication es una prescripción de un paciente con su cadencia de refill.
// RefillSchedule es una etiqueta descriptiva ("monthly", "weekly"); no se
// interpreta para calcular recurrencias.
type Medication struct {
	ID        string
	PatientID string

	Name     string
	Dosage   string // texto libre, p.ej. "10mg"
	Quantity int

	RefillDate     time.Time
	RefillSchedule string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OverdueAt indica si el refill ya venció respecto de "now". Una fecha
// vencida es data válida: se marca, no se rechaza.
func (m Medication) OverdueAt(now time.Time) bool {
	return m.RefillDate.Before(now)
}

// DueWithin indica si el refill cae en [now, now+days).
func (m Medication) DueWithin(now time.Time, days int) bool {
	end := now.AddDate(0, 0, days)
	return !m.RefillDate.Before(now) && m.RefillDate.Before(end)
}
