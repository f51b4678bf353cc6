package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Nombre string
	RolID  int
}

// Roles sembrados en el catálogo Rol.
const (
	RolAdministrador = 1
	RolVeterinario   = 2
)
