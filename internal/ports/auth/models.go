package auth

// Role distingue las dos vistas del portal.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Claims representa la identidad verificada de una sesión.
// Para sesiones admin, PatientID queda vacío.
type Claims struct {
	PatientID string
	Email     string
	Role      Role
}
