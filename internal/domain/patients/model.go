package patients

import "time"

// Patient es el registro demográfico de un paciente del portal.
// PasswordHash es bcrypt y nunca viaja en responses.
type Patient struct {
	ID string

	FirstName string
	LastName  string

	// Email es único y funciona como identificador de login.
	Email        string
	PasswordHash string

	DOB     *time.Time
	Phone   string
	Address string

	CreatedAt time.Time
	UpdatedAt time.Time
}
