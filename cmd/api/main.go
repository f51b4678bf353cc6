package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"ganado-api/internal/adapters/auth/jwtauth"
	"ganado-api/internal/platform/logger"
	"ganado-api/internal/ports/auth"
	"ganado-api/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env es opcional: en producción las vars vienen del entorno.
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin JWT_SECRET el verifier queda nil: modo dev con headers X-Debug-*.
	var verifier auth.AuthVerifier
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		verifier = jwtauth.New(secret)
	} else {
		log.Warn("JWT_SECRET no seteado, auth en modo dev", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
