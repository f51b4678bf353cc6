package catalogo

import "time"

// Nombres de estado sembrados. El workflow de ventas resuelve los IDs
// por nombre al arrancar, nunca por posición en el seed.
const (
	EstadoViva      = "viva"
	EstadoVendida   = "vendida"
	EstadoFallecida = "fallecida"
)

// Categoria clasifica animales (vaca, toro, ternero, ...).
type Categoria struct {
	ID          string
	Tipo        string
	Descripcion string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Estado es una fila del catálogo de estados de vida.
type Estado struct {
	ID     string
	Nombre string
}

// Rol usa IDs enteros sembrados (1=Administrador, 2=Veterinario).
type Rol struct {
	ID          int
	Nombre      string
	Descripcion string
}
