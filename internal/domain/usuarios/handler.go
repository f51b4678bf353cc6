package usuarios

import (
	"encoding/json"
	"net/http"
	"time"

	"ganado-api/internal/middleware"
	"ganado-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/usuarios", func(ur chi.Router) {
		ur.Get("/", listUsuariosHandler(svc))
		ur.Get("/{usuarioID}", getUsuarioHandler(svc))
	})
}

type usuarioResponse struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Correo    string    `json:"correo"`
	RolID     int       `json:"rol_id"`
	CreatedAt time.Time `json:"created_at"`
}

func listUsuariosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !middleware.HasRole(claims, auth.RolAdministrador) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]usuarioResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUsuarioResponse(u))
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "count": len(out)})
	}
}

func getUsuarioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !middleware.HasRole(claims, auth.RolAdministrador) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "usuarioID"))
		if err != nil {
			http.Error(w, "usuario no encontrado", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": toUsuarioResponse(u)})
	}
}

func toUsuarioResponse(u Usuario) usuarioResponse {
	return usuarioResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Correo:    u.Correo,
		RolID:     u.RolID,
		CreatedAt: u.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
