package ventas

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ganado-api/internal/middleware"
	"ganado-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/ventas", func(vr chi.Router) {
		vr.Get("/", listVentasHandler(svc))
		vr.Get("/{ventaID}", getVentaHandler(svc))
		vr.Post("/", createVentaHandler(svc))
		vr.Put("/{ventaID}", updateVentaHandler(svc))
		vr.Delete("/{ventaID}", deleteVentaHandler(svc))
	})

	// Sub-recurso del animal (registrado acá para no cruzar imports)
	r.Get("/animales/{animalID}/venta", getVentaByAnimalHandler(svc))
}

type createVentaRequest struct {
	AnimalID   string `json:"animal_id" validate:"required"`
	FechaVenta string `json:"fecha_venta,omitempty"` // YYYY-MM-DD

	PrecioUnitario     float64 `json:"precio_unitario" validate:"required,gt=0"`
	Cantidad           int     `json:"cantidad" validate:"gte=0"`
	Subtotal           float64 `json:"subtotal" validate:"gte=0"`
	ImpuestoPorcentaje float64 `json:"impuesto_porcentaje" validate:"gte=0,lte=100"`

	TipoVenta     string `json:"tipo_venta"`
	Comprador     string `json:"comprador"`
	Vendedor      string `json:"vendedor"`
	MetodoPago    string `json:"metodo_pago"`
	Observaciones string `json:"observaciones"`
}

type updateVentaRequest struct {
	FechaVenta string `json:"fecha_venta,omitempty"` // YYYY-MM-DD

	PrecioUnitario     float64 `json:"precio_unitario" validate:"required,gt=0"`
	Cantidad           int     `json:"cantidad" validate:"gte=0"`
	Subtotal           float64 `json:"subtotal" validate:"gte=0"`
	ImpuestoPorcentaje float64 `json:"impuesto_porcentaje" validate:"gte=0,lte=100"`

	TipoVenta     string `json:"tipo_venta"`
	Comprador     string `json:"comprador"`
	Vendedor      string `json:"vendedor"`
	MetodoPago    string `json:"metodo_pago"`
	Observaciones string `json:"observaciones"`
}

type ventaResponse struct {
	ID           string `json:"id"`
	AnimalID     string `json:"animal_id"`
	AnimalNombre string `json:"animal_nombre,omitempty"`
	FechaVenta   string `json:"fecha_venta"`

	PrecioUnitario     float64 `json:"precio_unitario"`
	Cantidad           int     `json:"cantidad"`
	Subtotal           float64 `json:"subtotal"`
	ImpuestoPorcentaje float64 `json:"impuesto_porcentaje"`
	Impuesto           float64 `json:"impuesto"`
	Total              float64 `json:"total"`

	TipoVenta           string `json:"tipo_venta,omitempty"`
	Comprador           string `json:"comprador,omitempty"`
	Vendedor            string `json:"vendedor,omitempty"`
	MetodoPago          string `json:"metodo_pago,omitempty"`
	RegistradoPor       string `json:"registrado_por,omitempty"`
	RegistradoPorNombre string `json:"registrado_por_nombre,omitempty"`
	Observaciones       string `json:"observaciones,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func listVentasHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		filter, page, limit, paged, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ventaResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVentaResponse(v))
		}

		resp := map[string]any{"data": out, "count": len(out)}
		if paged {
			total, err := svc.Count(r.Context(), filter)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			resp["count"] = total
			resp["pagination"] = buildPagination(page, limit, total)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getVentaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "ventaID"))
		if err != nil {
			http.Error(w, "venta no encontrada", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toVentaResponse(v)})
	}
}

func getVentaByAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		v, err := svc.GetByAnimal(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "venta no encontrada", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toVentaResponse(v)})
	}
}

func createVentaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		var req createVentaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "datos de venta inválidos", http.StatusBadRequest)
			return
		}

		fechaVenta, err := parseFechaOpcional(req.FechaVenta)
		if err != nil {
			http.Error(w, "fecha_venta must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		registradoPor := ""
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			registradoPor = claims.UserID
		}

		v, err := svc.Create(r.Context(), CreateInput{
			AnimalID:           req.AnimalID,
			FechaVenta:         fechaVenta,
			PrecioUnitario:     req.PrecioUnitario,
			Cantidad:           req.Cantidad,
			Subtotal:           req.Subtotal,
			ImpuestoPorcentaje: req.ImpuestoPorcentaje,
			TipoVenta:          req.TipoVenta,
			Comprador:          req.Comprador,
			Vendedor:           req.Vendedor,
			MetodoPago:         req.MetodoPago,
			RegistradoPor:      registradoPor,
			Observaciones:      req.Observaciones,
		})
		if err != nil {
			respondVentaError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toVentaResponse(v)})
	}
}

func updateVentaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		var req updateVentaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "datos de venta inválidos", http.StatusBadRequest)
			return
		}

		fechaVenta, err := parseFechaOpcional(req.FechaVenta)
		if err != nil {
			http.Error(w, "fecha_venta must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		v, err := svc.Update(r.Context(), chi.URLParam(r, "ventaID"), UpdateInput{
			FechaVenta:         fechaVenta,
			PrecioUnitario:     req.PrecioUnitario,
			Cantidad:           req.Cantidad,
			Subtotal:           req.Subtotal,
			ImpuestoPorcentaje: req.ImpuestoPorcentaje,
			TipoVenta:          req.TipoVenta,
			Comprador:          req.Comprador,
			Vendedor:           req.Vendedor,
			MetodoPago:         req.MetodoPago,
			Observaciones:      req.Observaciones,
		})
		if err != nil {
			respondVentaError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toVentaResponse(v)})
	}
}

func deleteVentaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		deleted, err := svc.Delete(r.Context(), chi.URLParam(r, "ventaID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "venta no encontrada", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func respondVentaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "datos de venta inválidos", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "venta no encontrada", http.StatusNotFound)
	case errors.Is(err, ErrVentaDuplicada):
		http.Error(w, "Ya existe una venta para este animal", http.StatusConflict)
	case errors.Is(err, ErrAnimalNoViva):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrReferencia):
		http.Error(w, "El animal o usuario especificado no existe", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseListFilter(r *http.Request) (ListFilter, int, int, bool, error) {
	q := r.URL.Query()

	filter := ListFilter{
		AnimalID:   strings.TrimSpace(q.Get("animal_id")),
		TipoVenta:  strings.TrimSpace(q.Get("tipo_venta")),
		Comprador:  strings.TrimSpace(q.Get("comprador")),
		MetodoPago: strings.TrimSpace(q.Get("metodo_pago")),
	}

	if v := strings.TrimSpace(q.Get("desde")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, 0, 0, false, errors.New("desde must be YYYY-MM-DD")
		}
		filter.Desde = &t
	}
	if v := strings.TrimSpace(q.Get("hasta")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, 0, 0, false, errors.New("hasta must be YYYY-MM-DD")
		}
		filter.Hasta = &t
	}

	pageStr, limitStr := q.Get("page"), q.Get("limit")
	if pageStr == "" || limitStr == "" {
		return filter, 0, 0, false, nil
	}

	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = 10
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, page, limit, true, nil
}

func parseFechaOpcional(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toVentaResponse(v Venta) ventaResponse {
	return ventaResponse{
		ID:                  v.ID,
		AnimalID:            v.AnimalID,
		AnimalNombre:        v.AnimalNombre,
		FechaVenta:          v.FechaVenta.Format("2006-01-02"),
		PrecioUnitario:      v.PrecioUnitario,
		Cantidad:            v.Cantidad,
		Subtotal:            v.Subtotal,
		ImpuestoPorcentaje:  v.ImpuestoPorcentaje,
		Impuesto:            v.Impuesto,
		Total:               v.Total,
		TipoVenta:           v.TipoVenta,
		Comprador:           v.Comprador,
		Vendedor:            v.Vendedor,
		MetodoPago:          v.MetodoPago,
		RegistradoPor:       v.RegistradoPor,
		RegistradoPorNombre: v.RegistradoPorNombre,
		Observaciones:       v.Observaciones,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

type paginationMeta struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

func buildPagination(page, limit, total int) paginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	meta := paginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	if meta.HasNextPage {
		n := page + 1
		meta.NextPage = &n
	}
	if meta.HasPrevPage {
		p := page - 1
		meta.PrevPage = &p
	}
	return meta
}

// requireRol corta con 401/403 si no hay claims o el rol no alcanza.
func requireRol(w http.ResponseWriter, r *http.Request, roles ...int) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !middleware.HasRole(claims, roles...) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
