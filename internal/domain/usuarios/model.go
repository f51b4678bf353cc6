package usuarios

import "time"

// Usuario se consume solo para enriquecer respuestas (nombre de quien
// registró una venta o aplicó un evento). El alta y las credenciales
// viven en el servicio de sesiones, fuera de este backend.
type Usuario struct {
	ID     string
	Nombre string
	Correo string
	RolID  int

	CreatedAt time.Time
}
