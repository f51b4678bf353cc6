package catalogo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ganado-api/internal/middleware"
	"ganado-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/categorias", func(cr chi.Router) {
		cr.Get("/", listCategoriasHandler(svc))
		cr.Get("/{categoriaID}", getCategoriaHandler(svc))
		cr.Post("/", createCategoriaHandler(svc))
		cr.Put("/{categoriaID}", updateCategoriaHandler(svc))
		cr.Delete("/{categoriaID}", deleteCategoriaHandler(svc))
	})

	r.Route("/estados", func(er chi.Router) {
		er.Get("/", listEstadosHandler(svc))
		er.Get("/{estadoID}", getEstadoHandler(svc))
		er.Post("/", createEstadoHandler(svc))
		er.Put("/{estadoID}", updateEstadoHandler(svc))
		er.Delete("/{estadoID}", deleteEstadoHandler(svc))
	})

	r.Route("/roles", func(rr chi.Router) {
		rr.Get("/", listRolesHandler(svc))
		rr.Get("/{rolID}", getRolHandler(svc))
	})
}

type categoriaRequest struct {
	Tipo        string `json:"tipo"`
	Descripcion string `json:"descripcion"`
}

type estadoRequest struct {
	Nombre string `json:"nombre"`
}

type categoriaResponse struct {
	ID          string    `json:"id"`
	Tipo        string    `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type estadoResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type rolResponse struct {
	ID          int    `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

func toCategoriaResponse(c Categoria) categoriaResponse {
	return categoriaResponse{
		ID:          c.ID,
		Tipo:        c.Tipo,
		Descripcion: c.Descripcion,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toEstadoResponse(e Estado) estadoResponse {
	return estadoResponse{ID: e.ID, Nombre: e.Nombre}
}

func toRolResponse(r Rol) rolResponse {
	return rolResponse{ID: r.ID, Nombre: r.Nombre, Descripcion: r.Descripcion}
}

func listCategoriasHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		items, err := svc.ListCategorias(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]categoriaResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCategoriaResponse(c))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func getCategoriaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		c, err := svc.GetCategoria(r.Context(), chi.URLParam(r, "categoriaID"))
		if err != nil {
			http.Error(w, "categoría no encontrada", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toCategoriaResponse(c)})
	}
}

func createCategoriaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		var req categoriaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.CreateCategoria(r.Context(), CategoriaInput(req))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toCategoriaResponse(c)})
	}
}

func updateCategoriaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		var req categoriaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.UpdateCategoria(r.Context(), chi.URLParam(r, "categoriaID"), CategoriaInput(req))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "categoría no encontrada", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toCategoriaResponse(c)})
	}
}

func deleteCategoriaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		if err := svc.DeleteCategoria(r.Context(), chi.URLParam(r, "categoriaID")); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "categoría no encontrada", http.StatusNotFound)
			case errors.Is(err, ErrReferenciado):
				http.Error(w, "la categoría está siendo referenciada por animales", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func listEstadosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		items, err := svc.ListEstados(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]estadoResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEstadoResponse(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func getEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador, auth.RolVeterinario) {
			return
		}
		e, err := svc.GetEstado(r.Context(), chi.URLParam(r, "estadoID"))
		if err != nil {
			http.Error(w, "estado no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoResponse(e)})
	}
}

func createEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		var req estadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		e, err := svc.CreateEstado(r.Context(), req.Nombre)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": toEstadoResponse(e)})
	}
}

func updateEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		var req estadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		e, err := svc.UpdateEstado(r.Context(), chi.URLParam(r, "estadoID"), req.Nombre)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "estado no encontrado", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toEstadoResponse(e)})
	}
}

func deleteEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		if err := svc.DeleteEstado(r.Context(), chi.URLParam(r, "estadoID")); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "estado no encontrado", http.StatusNotFound)
			case errors.Is(err, ErrReferenciado):
				http.Error(w, "el estado está siendo referenciado", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func listRolesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		items, err := svc.ListRoles(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]rolResponse, 0, len(items))
		for _, rol := range items {
			out = append(out, toRolResponse(rol))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func getRolHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRol(w, r, auth.RolAdministrador) {
			return
		}
		id, err := strconv.Atoi(chi.URLParam(r, "rolID"))
		if err != nil {
			http.Error(w, "rol inválido", http.StatusBadRequest)
			return
		}
		rol, err := svc.GetRol(r.Context(), id)
		if err != nil {
			http.Error(w, "rol no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toRolResponse(rol)})
	}
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
