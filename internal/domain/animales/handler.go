package animales

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
	r.Route("/animales", func(ar chi.Router) {
		ar.Get("/", listAnimalesHandler(svc))
		// Registrada antes de /{animalID} para que chi no la capture como ID.
		ar.Get("/detalles", listDetallesHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))
		ar.Get("/{animalID}/detalle", getDetalleHandler(svc))
		ar.Post("/", createAnimalHandler(svc))
		ar.Put("/{animalID}", updateAnimalHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))
	})
}

type animalRequest struct {
	Nombre string  `json:"nombre" validate:"required"`
	Sexo   string  `json:"sexo" validate:"required,oneof=macho hembra"`
	Color  string  `json:"color"`
	PesoKg float64 `json:"peso_kg" validate:"gte=0"`
	Raza   string  `json:"raza"`

	FechaNacimiento string `json:"fecha_nacimiento,omitempty"` // YYYY-MM-DD
	FechaIngreso    string `json:"fecha_ingreso,omitempty"`    // YYYY-MM-DD

	EstaPreniada       bool   `json:"esta_preniada"`
	FechaMonta         string `json:"fecha_monta,omitempty"`          // YYYY-MM-DD
	FechaEstimadaParto string `json:"fecha_estimada_parto,omitempty"` // YYYY-MM-DD

	CategoriaID string `json:"categoria_id"`
	ImagenURL   string `json:"imagen_url" validate:"omitempty,url"`
}

type animalResponse struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Sexo   string  `json:"sexo"`
	Color  string  `json:"color,omitempty"`
	PesoKg float64 `json:"peso_kg"`
	Raza   string  `json:"raza,omitempty"`

	FechaNacimiento *string `json:"fecha_nacimiento,omitempty"`
	FechaIngreso    string  `json:"fecha_ingreso"`

	EstaPreniada       bool    `json:"esta_preniada"`
	FechaMonta         *string `json:"fecha_monta,omitempty"`
	FechaEstimadaParto *string `json:"fecha_estimada_parto,omitempty"`

	CategoriaID   string `json:"categoria_id,omitempty"`
	CategoriaTipo string `json:"categoria_tipo,omitempty"`
	ImagenURL     string `json:"imagen_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type animalDetalleResponse struct {
	animalResponse

	EstadoNombre       string  `json:"estado_nombre,omitempty"`
	FechaFallecimiento *string `json:"fecha_fallecimiento,omitempty"`
}

func listAnimalesHandler(svc *Service) http.HandlerFunc {
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

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
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

func listDetallesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		filter, _, _, _, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListDetalles(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalDetalleResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toAnimalDetalleResponse(d))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toAnimalResponse(a)})
	}
}

func getDetalleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		d, err := svc.GetDetalle(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toAnimalDetalleResponse(d)})
	}
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		in, err := decodeAnimalRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), in)
		if err != nil {
			respondAnimalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toAnimalResponse(a)})
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		in, err := decodeAnimalRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "animalID"), UpdateInput(in))
		if err != nil {
			respondAnimalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toAnimalResponse(a)})
	}
}

func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		deleted, err := svc.Delete(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			if errors.Is(err, ErrReferenciado) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "animal no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func respondAnimalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "datos de animal inválidos", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal no encontrado", http.StatusNotFound)
	case errors.Is(err, ErrReferencia):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeAnimalRequest valida el payload y traduce las fechas YYYY-MM-DD.
// CreateInput y UpdateInput comparten forma, así que devuelve CreateInput
// y el update la convierte.
func decodeAnimalRequest(r *http.Request) (CreateInput, error) {
	var req animalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return CreateInput{}, errors.New("invalid json")
	}
	if err := validate.Struct(req); err != nil {
		return CreateInput{}, errors.New("datos de animal inválidos")
	}

	out := CreateInput{
		Nombre:       req.Nombre,
		Sexo:         req.Sexo,
		Color:        req.Color,
		PesoKg:       req.PesoKg,
		Raza:         req.Raza,
		EstaPreniada: req.EstaPreniada,
		CategoriaID:  req.CategoriaID,
		ImagenURL:    req.ImagenURL,
	}

	var err error
	if out.FechaNacimiento, err = parseFechaOpcional(req.FechaNacimiento); err != nil {
		return CreateInput{}, errors.New("fecha_nacimiento must be YYYY-MM-DD")
	}
	if out.FechaIngreso, err = parseFechaOpcional(req.FechaIngreso); err != nil {
		return CreateInput{}, errors.New("fecha_ingreso must be YYYY-MM-DD")
	}
	if out.FechaMonta, err = parseFechaOpcional(req.FechaMonta); err != nil {
		return CreateInput{}, errors.New("fecha_monta must be YYYY-MM-DD")
	}
	if out.FechaEstimadaParto, err = parseFechaOpcional(req.FechaEstimadaParto); err != nil {
		return CreateInput{}, errors.New("fecha_estimada_parto must be YYYY-MM-DD")
	}
	return out, nil
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

func parseListFilter(r *http.Request) (ListFilter, int, int, bool, error) {
	q := r.URL.Query()

	filter := ListFilter{
		Sexo:        strings.ToLower(strings.TrimSpace(q.Get("sexo"))),
		CategoriaID: strings.TrimSpace(q.Get("categoria_id")),
		Nombre:      strings.TrimSpace(q.Get("nombre")),
	}
	if v := q.Get("esta_preniada"); v != "" {
		b := v == "true" || v == "1"
		filter.EstaPreniada = &b
	}

	var err error
	if filter.FechaIngresoDesde, err = parseFechaOpcional(q.Get("fecha_ingreso_desde")); err != nil {
		return ListFilter{}, 0, 0, false, errors.New("fecha_ingreso_desde must be YYYY-MM-DD")
	}
	if filter.FechaIngresoHasta, err = parseFechaOpcional(q.Get("fecha_ingreso_hasta")); err != nil {
		return ListFilter{}, 0, 0, false, errors.New("fecha_ingreso_hasta must be YYYY-MM-DD")
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

func toAnimalResponse(a Animal) animalResponse {
	resp := animalResponse{
		ID:            a.ID,
		Nombre:        a.Nombre,
		Sexo:          a.Sexo,
		Color:         a.Color,
		PesoKg:        a.PesoKg,
		Raza:          a.Raza,
		FechaIngreso:  a.FechaIngreso.Format("2006-01-02"),
		EstaPreniada:  a.EstaPreniada,
		CategoriaID:   a.CategoriaID,
		CategoriaTipo: a.CategoriaTipo,
		ImagenURL:     a.ImagenURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	resp.FechaNacimiento = fechaPtr(a.FechaNacimiento)
	resp.FechaMonta = fechaPtr(a.FechaMonta)
	resp.FechaEstimadaParto = fechaPtr(a.FechaEstimadaParto)
	return resp
}

func toAnimalDetalleResponse(d AnimalDetalle) animalDetalleResponse {
	return animalDetalleResponse{
		animalResponse:     toAnimalResponse(d.Animal),
		EstadoNombre:       d.EstadoNombre,
		FechaFallecimiento: fechaPtr(d.FechaFallecimiento),
	}
}

func fechaPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
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
