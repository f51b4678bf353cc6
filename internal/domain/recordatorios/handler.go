package recordatorios

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
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/recordatorios", func(rr chi.Router) {
		rr.Get("/", listRecordatoriosHandler(svc))
		rr.Get("/{recordatorioID}", getRecordatorioHandler(svc))
		rr.Post("/", createRecordatorioHandler(svc))
		rr.Put("/{recordatorioID}", updateRecordatorioHandler(svc))
		rr.Delete("/{recordatorioID}", deleteRecordatorioHandler(svc))

		// Marcar hecho/pendiente
		rr.Patch("/{recordatorioID}/estado", updateEstadoHandler(svc))
	})

	// Sub-recurso del animal (registrado acá para no cruzar imports)
	r.Get("/animales/{animalID}/recordatorios", listByAnimalHandler(svc))
}

type createRecordatorioRequest struct {
	AnimalID    string `json:"animal_id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Fecha       string `json:"fecha"` // YYYY-MM-DD
}

type updateRecordatorioRequest struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Fecha       string `json:"fecha"` // YYYY-MM-DD
}

type updateEstadoRequest struct {
	Estado string `json:"estado"` // pendiente | hecho
}

type recordatorioResponse struct {
	ID           string    `json:"id"`
	AnimalID     string    `json:"animal_id"`
	AnimalNombre string    `json:"animal_nombre,omitempty"`
	Titulo       string    `json:"titulo"`
	Descripcion  string    `json:"descripcion"`
	Fecha        string    `json:"fecha"` // YYYY-MM-DD
	Estado       Status    `json:"estado"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func listRecordatoriosHandler(svc *Service) http.HandlerFunc {
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

		out := make([]recordatorioResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordatorioResponse(rec))
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

func getRecordatorioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordatorioID"))
		if err != nil {
			http.Error(w, "recordatorio no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toRecordatorioResponse(rec)})
	}
}

func createRecordatorioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		var req createRecordatorioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		fecha, err := time.Parse("2006-01-02", strings.TrimSpace(req.Fecha))
		if err != nil {
			http.Error(w, "fecha must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), CreateInput{
			AnimalID:    req.AnimalID,
			Titulo:      req.Titulo,
			Descripcion: req.Descripcion,
			Fecha:       fecha,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrReferencia):
				http.Error(w, "el animal especificado no existe", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toRecordatorioResponse(rec)})
	}
}

func updateRecordatorioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		var req updateRecordatorioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		fecha, err := time.Parse("2006-01-02", strings.TrimSpace(req.Fecha))
		if err != nil {
			http.Error(w, "fecha must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "recordatorioID"), UpdateInput{
			Titulo:      req.Titulo,
			Descripcion: req.Descripcion,
			Fecha:       fecha,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "recordatorio no encontrado", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toRecordatorioResponse(rec)})
	}
}

func updateEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		var req updateEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := svc.UpdateEstado(r.Context(), chi.URLParam(r, "recordatorioID"), Status(strings.TrimSpace(req.Estado)))
		if err != nil {
			switch {
			case errors.Is(err, ErrEstadoInvalid), errors.Is(err, ErrInvalidInput):
				http.Error(w, "estado inválido", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "recordatorio no encontrado", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"updated": true})
	}
}

func deleteRecordatorioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		deleted, err := svc.Delete(r.Context(), chi.URLParam(r, "recordatorioID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "recordatorio no encontrado", http.StatusNotFound)
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

		out := make([]recordatorioResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordatorioResponse(rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func parseListFilter(r *http.Request) (ListFilter, int, int, bool, error) {
	q := r.URL.Query()

	filter := ListFilter{
		AnimalID: strings.TrimSpace(q.Get("animal_id")),
		Estado:   Status(strings.TrimSpace(q.Get("estado"))),
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

	// Paginación solo si vienen page Y limit (comportamiento heredado de la API)
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

func toRecordatorioResponse(rec Recordatorio) recordatorioResponse {
	return recordatorioResponse{
		ID:           rec.ID,
		AnimalID:     rec.AnimalID,
		AnimalNombre: rec.AnimalNombre,
		Titulo:       rec.Titulo,
		Descripcion:  rec.Descripcion,
		Fecha:        rec.Fecha.Format("2006-01-02"),
		Estado:       rec.Estado,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
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
