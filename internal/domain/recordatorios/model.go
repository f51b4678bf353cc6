package recordatorios

import "time"

type Status string

const (
	StatusPendiente Status = "pendiente"
	StatusHecho     Status = "hecho"
)

// ValidStatus valida los valores aceptados por PATCH /recordatorios/{id}/estado.
func ValidStatus(s Status) bool {
	return s == StatusPendiente || s == StatusHecho
}

// Origen de un recordatorio derivado. Vacío para los creados a mano.
const (
	OrigenParto  = "parto"  // OrigenID = ID del animal
	OrigenEvento = "evento" // OrigenID = ID del evento veterinario
)

// Recordatorio puede ser manual (creado por un usuario) o derivado:
// calculado a partir de la preñez de un animal o de la próxima fecha de un
// evento veterinario. Los derivados guardan su origen (tipo + ID fuente)
// para que la re-derivación no dependa de reconstruir el título.
type Recordatorio struct {
	ID       string
	AnimalID string

	Titulo      string
	Descripcion string
	Fecha       time.Time // fecha objetivo, a nivel de día
	Estado      Status

	OrigenTipo string
	OrigenID   string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizado para la API (JOIN con animales).
	AnimalNombre string
}

type ListFilter struct {
	AnimalID string
	Desde    *time.Time
	Hasta    *time.Time
	Estado   Status

	Limit  int
	Offset int
}
