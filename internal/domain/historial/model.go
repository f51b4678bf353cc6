package historial

import "time"

// Evento es una entrada del historial veterinario de un animal. Si trae
// ProximaFecha, de ella se deriva un recordatorio.
type Evento struct {
	ID       string
	AnimalID string

	TipoEvento      string // vacunación, desparasitación, control, etc.
	Descripcion     string
	FechaAplicacion time.Time
	ProximaFecha    *time.Time
	HechoPor        string // usuario que registró/aplicó el evento

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizado para la API.
	AnimalNombre   string
	HechoPorNombre string
}

type ListFilter struct {
	AnimalID   string
	TipoEvento string
	Desde      *time.Time
	Hasta      *time.Time

	Limit  int
	Offset int
}
