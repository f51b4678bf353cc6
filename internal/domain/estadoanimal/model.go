package estadoanimal

import "time"

// EstadoAnimal es la fila de estado vigente de un animal. Hay a lo sumo
// una por animal (UNIQUE animal_id): los cambios pisan la fila, no se
// acumulan filas históricas.
type EstadoAnimal struct {
	ID       string
	AnimalID string
	EstadoID string

	// Solo tiene sentido cuando el estado es "fallecida".
	FechaFallecimiento *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizado para la API (JOIN con estados y animales).
	EstadoNombre string
	AnimalNombre string
}

type ListFilter struct {
	EstadoID string

	Limit  int
	Offset int
}
