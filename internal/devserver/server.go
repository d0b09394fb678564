// Package devserver is a local implementation of the photo-sharing backend
// used for development and end-to-end tests of the client.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/photostream/photostream/internal/devserver/recovery"
	"github.com/photostream/photostream/internal/devserver/storage"
)

// NewRouter wires every route to h. Routes other than health, metrics and
// images require a bearer token.
func NewRouter(h *Handler, logger zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(accessLog(logger), recovery.Middleware(logger))

	root.HandleFunc("/health", h.Health).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")
	root.HandleFunc("/images/{fileRef}", h.Image).Methods("GET")

	api := root.NewRoute().Subrouter()
	api.Use(requireUser)

	// Users
	api.HandleFunc("/user/list", h.ListUsers).Methods("GET")
	api.HandleFunc("/user/photos-preview/{userId}", h.PhotoPreview).Methods("GET")
	api.HandleFunc("/user/delete/{userId}", h.DeleteUser).Methods("DELETE")
	api.HandleFunc("/user/{userId}", h.GetUser).Methods("GET")

	// Photos
	api.HandleFunc("/photosOfUser/{userId}", h.PhotosOfUser).Methods("GET")
	api.HandleFunc("/photos/{photoId}/like", h.Like).Methods("POST")
	api.HandleFunc("/photos/{photoId}/unlike", h.Unlike).Methods("POST")
	api.HandleFunc("/photos/{photoId}", h.DeletePhoto).Methods("DELETE")

	// Comments
	api.HandleFunc("/commentsOfPhoto/{photoId}", h.AddComment).Methods("POST")
	api.HandleFunc("/commentsOfPhoto/{photoId}/{commentId}", h.DeleteComment).Methods("DELETE")

	// Favorites
	api.HandleFunc("/addFavorite", h.AddFavorite).Methods("POST")
	api.HandleFunc("/removeFavorite", h.RemoveFavorite).Methods("POST")
	api.HandleFunc("/getFavorites/{userId}", h.ListFavorites).Methods("GET")

	return root
}

// accessLog assigns a request id when the client sent none, records metrics
// and logs one line per request.
func accessLog(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
				r.Header.Set("X-Request-ID", rid)
			}
			w.Header().Set("X-Request-ID", rid)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := routeTemplate(r)
			httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			logger.Info().
				Str("method", r.Method).
				Str("route", route).
				Int("status", rec.status).
				Str("request_id", rid).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

// Open opens the database configured in cfg, ensures the schema and seeds
// sample data when requested.
func Open(ctx context.Context, cfg *Config) (*storage.Store, error) {
	db, err := storage.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	st, err := storage.New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.Seed {
		if err := storage.Seed(ctx, st); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return st, nil
}

// Run starts the backend and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, cfg *Config, logger zerolog.Logger) error {
	st, err := Open(ctx, cfg)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("Store unavailable")
		return err
	}
	defer func() { _ = st.DB().Close() }()

	router := NewRouter(NewHandler(st, cfg.ImageDir, logger), logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.HTTPPort).Str("sqlite", cfg.SQLitePath).Bool("seed", cfg.Seed).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		logger.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		logger.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}
