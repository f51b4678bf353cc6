package ventas

import "time"

// Venta es el registro de venta de un animal. Hay a lo sumo una por
// animal (UNIQUE animal_id): vender es un evento terminal del ciclo de
// vida, no una serie.
type Venta struct {
	ID       string
	AnimalID string

	FechaVenta time.Time

	// Montos: Subtotal = PrecioUnitario * Cantidad salvo que el cliente
	// mande uno explícito; Impuesto = Subtotal * ImpuestoPorcentaje / 100.
	PrecioUnitario     float64
	Cantidad           int
	Subtotal           float64
	ImpuestoPorcentaje float64
	Impuesto           float64
	Total              float64

	TipoVenta     string // remate, particular, frigorífico...
	Comprador     string
	Vendedor      string
	MetodoPago    string
	RegistradoPor string // usuario que registró la venta
	Observaciones string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizado para la API.
	AnimalNombre        string
	RegistradoPorNombre string
}

type ListFilter struct {
	AnimalID   string
	Desde      *time.Time
	Hasta      *time.Time
	TipoVenta  string
	Comprador  string
	MetodoPago string

	Limit  int
	Offset int
}
