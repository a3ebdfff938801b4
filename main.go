package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pigeon/internal/auth"
	"pigeon/internal/config"
	"pigeon/internal/handlers"
	"pigeon/internal/middleware"
	"pigeon/internal/store/sqlstore"
	"pigeon/internal/uploads"
	"pigeon/internal/ws"
)

var addr = flag.String("addr", "", "http service address (overrides ADDR)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	store, err := sqlstore.New(cfg.DBDriver, cfg.DBSource)
	if err != nil {
		logrus.WithError(err).Fatal("store")
	}

	saver, err := uploads.NewSaver(cfg.UploadDir)
	if err != nil {
		logrus.WithError(err).Fatal("uploads")
	}

	resolver := auth.NewResolver([]byte(cfg.JWTSecret), cfg.TokenTTL)

	// Realtime core: hub routes and broadcasts, monitor evicts dead
	// connections.
	hub := ws.NewHub(store, saver)
	monitor := ws.NewMonitor(hub.Registry(), cfg.PingInterval, cfg.PongTimeout, hub.Evict)
	ctx := context.Background()
	go hub.Run(ctx)
	go monitor.Run(ctx)

	authHandler := &handlers.AuthHandler{Store: store, Resolver: resolver}
	messageHandler := &handlers.MessageHandler{Store: store}

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	// API Endpoints
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	r.HandleFunc("/people", messageHandler.GetPeople).Methods("GET")
	r.Handle("/messages/{userId}",
		middleware.Auth(resolver, http.HandlerFunc(messageHandler.GetMessages))).Methods("GET")

	// WebSocket Endpoint: the token is checked before the upgrade; a
	// connection without a valid identity is never registered.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		claims, err := resolver.FromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ws.ServeWs(hub, w, r, claims.UserID, claims.Username)
	})

	// Stored attachments
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	logrus.WithField("addr", cfg.Addr).Info("starting server")
	logrus.Fatal(http.ListenAndServe(cfg.Addr, r))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request")
	})
}
