package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/puoklam/meetup-app-backend/env"
	"github.com/puoklam/meetup-app-backend/middleware"
)

func SetupMiddlewares(r *chi.Mux) {
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Expo-Push-Token"},
		MaxAge:         300,
	}))
	r.Use(middleware.WithDeviceInfo)
}

func New(h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + env.APP_PORT,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
