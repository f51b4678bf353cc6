package animales

import "time"

type Animal struct {
	ID     string
	Nombre string
	Sexo   string // "macho" | "hembra"
	Color  string
	PesoKg float64
	Raza   string

	FechaNacimiento *time.Time
	FechaIngreso    time.Time

	// Datos reproductivos. FechaEstimadaParto alimenta la derivación de
	// recordatorios de parto.
	EstaPreniada       bool
	FechaMonta         *time.Time
	FechaEstimadaParto *time.Time

	CategoriaID string
	ImagenURL   string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizado para la API (JOIN con categorias).
	CategoriaTipo string
}

// AnimalDetalle es la vista enriquecida que expone /animales/detalles:
// el animal más su estado vigente.
type AnimalDetalle struct {
	Animal

	EstadoNombre       string
	FechaFallecimiento *time.Time
}

type ListFilter struct {
	Sexo         string
	CategoriaID  string
	EstaPreniada *bool
	// Nombre hace match parcial, case-insensitive.
	Nombre string

	FechaIngresoDesde *time.Time
	FechaIngresoHasta *time.Time

	Limit  int
	Offset int
}
