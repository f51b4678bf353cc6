package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "ganado-api/internal/adapters/storage/memory"
	pg "ganado-api/internal/adapters/storage/postgres"
	"ganado-api/internal/domain/animales"
	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/estadoanimal"
	"ganado-api/internal/domain/historial"
	"ganado-api/internal/domain/recordatorios"
	"ganado-api/internal/domain/usuarios"
	"ganado-api/internal/domain/ventas"
	"ganado-api/internal/middleware"
	"ganado-api/internal/platform/logger"
	"ganado-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: store in-memory pre-armado (tests, seeds de dev).
	MemStore *mem.Store

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		categoriasRepo catalogo.CategoriasRepository
		estadosRepo    catalogo.EstadosRepository
		rolesRepo      catalogo.RolesRepository
		usuariosRepo   usuarios.Repository
		animalesRepo   animales.Repository
		eaRepo         estadoanimal.Repository
		ventasRepo     ventas.Repository
		recsRepo       recordatorios.Repository
		histRepo       historial.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Error("no se pudo abrir la base, usando memoria", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		categoriasRepo = pg.NewCategoriasRepo(db)
		estadosRepo = pg.NewEstadosRepo(db)
		rolesRepo = pg.NewRolesRepo(db)
		usuariosRepo = pg.NewUsuariosRepo(db)
		animalesRepo = pg.NewAnimalesRepo(db)
		eaRepo = pg.NewEstadoAnimalRepo(db)
		ventasRepo = pg.NewVentasRepo(db)
		recsRepo = pg.NewRecordatoriosRepo(db)
		histRepo = pg.NewHistorialRepo(db)
	} else {
		store := opts.MemStore
		if store == nil {
			store = mem.NewStore()
		}
		categoriasRepo = mem.NewCategoriasRepo(store)
		estadosRepo = mem.NewEstadosRepo(store)
		rolesRepo = mem.NewRolesRepo(store)
		usuariosRepo = mem.NewUsuariosRepo(store)
		animalesRepo = mem.NewAnimalesRepo(store)
		eaRepo = mem.NewEstadoAnimalRepo(store)
		ventasRepo = mem.NewVentasRepo(store)
		recsRepo = mem.NewRecordatoriosRepo(store)
		histRepo = mem.NewHistorialRepo(store)
	}

	// Services por módulo
	catalogoSvc := catalogo.NewService(categoriasRepo, estadosRepo, rolesRepo)
	usuariosSvc := usuarios.NewService(usuariosRepo)
	recsSvc := recordatorios.NewService(recsRepo, log)
	eaSvc := estadoanimal.NewService(eaRepo)
	animalesSvc := animales.NewService(animalesRepo, catalogoSvc, recsSvc, log)
	histSvc := historial.NewService(histRepo, animalesSvc, recsSvc, log)
	ventasSvc := ventas.NewService(ventasRepo, catalogoSvc, eaSvc, log)

	// El workflow de ventas resuelve estados por nombre: tienen que existir.
	if err := catalogoSvc.EnsureEstadosBase(context.Background()); err != nil {
		log.Error("no se pudieron sembrar los estados base", map[string]any{"error": err.Error()})
	}

	// Rutas por módulo
	catalogo.RegisterRoutes(r, catalogoSvc)
	usuarios.RegisterRoutes(r, usuariosSvc)
	animales.RegisterRoutes(r, animalesSvc)
	estadoanimal.RegisterRoutes(r, eaSvc)
	ventas.RegisterRoutes(r, ventasSvc)
	recordatorios.RegisterRoutes(r, recsSvc)
	historial.RegisterRoutes(r, histSvc)

	return r
}
