package estadoanimal

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

// No hay DELETE: la fila de estado vive mientras viva el animal y cae
// en cascada cuando se borra el animal.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/estado-animal", func(er chi.Router) {
		er.Get("/", listEstadosHandler(svc))
		er.Get("/{estadoAnimalID}", getEstadoHandler(svc))
		er.Post("/", createEstadoHandler(svc))
		er.Put("/{estadoAnimalID}", updateEstadoHandler(svc))
	})

	r.Get("/animales/{animalID}/estado", getEstadoByAnimalHandler(svc))
	r.Put("/animales/{animalID}/estado", setEstadoByAnimalHandler(svc))
}

type createEstadoRequest struct {
	AnimalID           string `json:"animal_id"`
	EstadoID           string `json:"estado_id"`
	FechaFallecimiento string `json:"fecha_fallecimiento,omitempty"` // YYYY-MM-DD
}

type updateEstadoRequest struct {
	EstadoID           string `json:"estado_id"`
	FechaFallecimiento string `json:"fecha_fallecimiento,omitempty"` // YYYY-MM-DD
}

type estadoAnimalResponse struct {
	ID                 string    `json:"id"`
	AnimalID           string    `json:"animal_id"`
	AnimalNombre       string    `json:"animal_nombre,omitempty"`
	EstadoID           string    `json:"estado_id"`
	EstadoNombre       string    `json:"estado_nombre,omitempty"`
	FechaFallecimiento *string   `json:"fecha_fallecimiento,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func listEstadosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}

		q := r.URL.Query()
		filter := ListFilter{EstadoID: strings.TrimSpace(q.Get("estado_id"))}

		pageStr, limitStr := q.Get("page"), q.Get("limit")
		paged := pageStr != "" && limitStr != ""
		page, limit := 1, 10
		if paged {
			if v, _ := strconv.Atoi(pageStr); v > 0 {
				page = v
			}
			if v, _ := strconv.Atoi(limitStr); v > 0 {
				limit = v
			}
			filter.Limit = limit
			filter.Offset = (page - 1) * limit
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]estadoAnimalResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEstadoAnimalResponse(e))
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

func getEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "estadoAnimalID"))
		if err != nil {
			http.Error(w, "estado de animal no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoAnimalResponse(e)})
	}
}

func getEstadoByAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		e, err := svc.GetCurrentState(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "estado de animal no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoAnimalResponse(e)})
	}
}

// setEstadoByAnimalHandler actualiza el estado vigente por animal, sin
// que el cliente tenga que conocer el ID de la fila del ledger.
func setEstadoByAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		var req updateEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ff, err := parseFechaOpcional(req.FechaFallecimiento)
		if err != nil {
			http.Error(w, "fecha_fallecimiento must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.SetState(r.Context(), chi.URLParam(r, "animalID"), req.EstadoID, ff)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "estado de animal no encontrado", http.StatusNotFound)
			case errors.Is(err, ErrReferencia):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoAnimalResponse(e)})
	}
}

func createEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		var req createEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ff, err := parseFechaOpcional(req.FechaFallecimiento)
		if err != nil {
			http.Error(w, "fecha_fallecimiento must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), CreateInput{
			AnimalID:           req.AnimalID,
			EstadoID:           req.EstadoID,
			FechaFallecimiento: ff,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrEstadoExistente):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrReferencia):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toEstadoAnimalResponse(e)})
	}
}

func updateEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}

		var req updateEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ff, err := parseFechaOpcional(req.FechaFallecimiento)
		if err != nil {
			http.Error(w, "fecha_fallecimiento must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "estadoAnimalID"), UpdateInput{
			EstadoID:           req.EstadoID,
			FechaFallecimiento: ff,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "estado de animal no encontrado", http.StatusNotFound)
			case errors.Is(err, ErrReferencia):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoAnimalResponse(e)})
	}
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

func toEstadoAnimalResponse(e EstadoAnimal) estadoAnimalResponse {
	resp := estadoAnimalResponse{
		ID:           e.ID,
		AnimalID:     e.AnimalID,
		AnimalNombre: e.AnimalNombre,
		EstadoID:     e.EstadoID,
		EstadoNombre: e.EstadoNombre,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.FechaFallecimiento != nil {
		s := e.FechaFallecimiento.Format("2006-01-02")
		resp.FechaFallecimiento = &s
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
