package historial

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
	r.Route("/historial", func(hr chi.Router) {
		hr.Get("/", listEventosHandler(svc))
		hr.Get("/{eventoID}", getEventoHandler(svc))
		hr.Post("/", createEventoHandler(svc))
		hr.Put("/{eventoID}", updateEventoHandler(svc))
		hr.Delete("/{eventoID}", deleteEventoHandler(svc))
	})

	// Sub-recurso del animal (registrado acá para no cruzar imports)
	r.Get("/animales/{animalID}/historial", listByAnimalHandler(svc))
}

type createEventoRequest struct {
	AnimalID        string `json:"animal_id" validate:"required"`
	TipoEvento      string `json:"tipo_evento" validate:"required"`
	Descripcion     string `json:"descripcion"`
	FechaAplicacion string `json:"fecha_aplicacion" validate:"required"` // YYYY-MM-DD
	ProximaFecha    string `json:"proxima_fecha,omitempty"`              // YYYY-MM-DD
	HechoPor        string `json:"hecho_por,omitempty"`
}

// El update no lleva animal_id: un evento no se muda de animal.
type updateEventoRequest struct {
	TipoEvento      string `json:"tipo_evento" validate:"required"`
	Descripcion     string `json:"descripcion"`
	FechaAplicacion string `json:"fecha_aplicacion" validate:"required"` // YYYY-MM-DD
	ProximaFecha    string `json:"proxima_fecha,omitempty"`              // YYYY-MM-DD
	HechoPor        string `json:"hecho_por,omitempty"`
}

type eventoResponse struct {
	ID              string    `json:"id"`
	AnimalID        string    `json:"animal_id"`
	AnimalNombre    string    `json:"animal_nombre,omitempty"`
	TipoEvento      string    `json:"tipo_evento"`
	Descripcion     string    `json:"descripcion,omitempty"`
	FechaAplicacion string    `json:"fecha_aplicacion"`
	ProximaFecha    *string   `json:"proxima_fecha,omitempty"`
	HechoPor        string    `json:"hecho_por,omitempty"`
	HechoPorNombre  string    `json:"hecho_por_nombre,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func listEventosHandler(svc *Service) http.HandlerFunc {
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

		out := make([]eventoResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventoResponse(e))
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

func getEventoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventoID"))
		if err != nil {
			http.Error(w, "evento no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEventoResponse(e)})
	}
}

func createEventoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		var req createEventoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "datos de evento inválidos", http.StatusBadRequest)
			return
		}

		fechaAplicacion, err := time.Parse("2006-01-02", strings.TrimSpace(req.FechaAplicacion))
		if err != nil {
			http.Error(w, "fecha_aplicacion must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		proxima, err := parseFechaOpcional(req.ProximaFecha)
		if err != nil {
			http.Error(w, "proxima_fecha must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		// Si no viene hecho_por, se toma del usuario autenticado.
		hechoPor := strings.TrimSpace(req.HechoPor)
		if hechoPor == "" {
			if claims, ok := middleware.GetClaims(r.Context()); ok {
				hechoPor = claims.UserID
			}
		}

		e, err := svc.Create(r.Context(), CreateInput{
			AnimalID:        req.AnimalID,
			TipoEvento:      req.TipoEvento,
			Descripcion:     req.Descripcion,
			FechaAplicacion: fechaAplicacion,
			ProximaFecha:    proxima,
			HechoPor:        hechoPor,
		})
		if err != nil {
			respondEventoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toEventoResponse(e)})
	}
}

func updateEventoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		var req updateEventoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "datos de evento inválidos", http.StatusBadRequest)
			return
		}

		fechaAplicacion, err := time.Parse("2006-01-02", strings.TrimSpace(req.FechaAplicacion))
		if err != nil {
			http.Error(w, "fecha_aplicacion must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		proxima, err := parseFechaOpcional(req.ProximaFecha)
		if err != nil {
			http.Error(w, "proxima_fecha must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "eventoID"), UpdateInput{
			TipoEvento:      req.TipoEvento,
			Descripcion:     req.Descripcion,
			FechaAplicacion: fechaAplicacion,
			ProximaFecha:    proxima,
			HechoPor:        req.HechoPor,
		})
		if err != nil {
			respondEventoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEventoResponse(e)})
	}
}

func deleteEventoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		deleted, err := svc.Delete(r.Context(), chi.URLParam(r, "eventoID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "evento no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func listByAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		items, err := svc.ListByAnimal(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventoResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventoResponse(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func respondEventoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "datos de evento inválidos", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "evento no encontrado", http.StatusNotFound)
	case errors.Is(err, ErrReferencia):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseListFilter(r *http.Request) (ListFilter, int, int, bool, error) {
	q := r.URL.Query()

	filter := ListFilter{
		AnimalID:   strings.TrimSpace(q.Get("animal_id")),
		TipoEvento: strings.TrimSpace(q.Get("tipo_evento")),
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

func toEventoResponse(e Evento) eventoResponse {
	resp := eventoResponse{
		ID:              e.ID,
		AnimalID:        e.AnimalID,
		AnimalNombre:    e.AnimalNombre,
		TipoEvento:      e.TipoEvento,
		Descripcion:     e.Descripcion,
		FechaAplicacion: e.FechaAplicacion.Format("2006-01-02"),
		HechoPor:        e.HechoPor,
		HechoPorNombre:  e.HechoPorNombre,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.ProximaFecha != nil {
		s := e.ProximaFecha.Format("2006-01-02")
		resp.ProximaFecha = &s
	}
	return resp
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
