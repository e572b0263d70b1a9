package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/config"
	"github.com/studysync/studysync-api/handlers"
	"github.com/studysync/studysync-api/middleware"
)

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatalf("main: invalid configuration: %v", err)
	}

	db, err := config.Connect(env)
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	tokens := auth.NewTokenIssuer(env.JWTSecret, env.JWTIssuer, env.JWTAudience, env.TokenTTL)
	authMiddleware, err := middleware.EnsureValidToken(tokens)
	if err != nil {
		log.Fatalf("main: failed to build token validator: %v", err)
	}

	DBHandler := handlers.NewDBHandler(db, tokens)
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)

	router := chi.NewRouter()
	router.Use(metrics.Handler)
	router.Handle("/metrics", promhttp.Handler())
	router.Mount("/api", DBHandler.Routes(authMiddleware))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(router)

	server := &http.Server{
		Addr:              env.Addr(),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("main: StudySync API listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server stopped: %v", err)
	}
}
