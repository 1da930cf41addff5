package main

import (
	"net/http"

	"github.com/skarras/circuitguard/internal/health"
)

func setupRouter(healthHandler *health.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/breakers", healthHandler.Breakers)

	return mux
}
