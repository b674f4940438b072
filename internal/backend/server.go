// Package backend serves the authoritative records API over SQLite. Every
// record is scoped to the owner resolved from the request's bearer token.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/prdsmith/internal/contract"
	"github.com/alexanderramin/prdsmith/internal/db"
	"github.com/alexanderramin/prdsmith/internal/repository"
)

// Server routes the records API to a RecordRepo.
type Server struct {
	repo   repository.RecordRepo
	uow    db.UnitOfWork
	auth   Authenticator
	logger *slog.Logger
	now    func() time.Time
	router *mux.Router
}

// Option customises a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUnitOfWork replaces the transaction runner used for partial updates.
func WithUnitOfWork(uow db.UnitOfWork) Option {
	return func(s *Server) { s.uow = uow }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer wires a server over an open, migrated database.
func NewServer(conn *sql.DB, auth Authenticator, opts ...Option) *Server {
	s := &Server{
		repo:   repository.NewSQLiteRecordRepo(conn),
		uow:    db.NewSQLiteUnitOfWork(conn),
		auth:   auth,
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auth == nil {
		s.auth = TokenTable{}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix(contract.RecordsPath).Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("", s.handleCreateRecord).Methods(http.MethodPost)
	api.HandleFunc("", s.handleListRecords).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleGetRecord).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleUpdateRecord).Methods(http.MethodPatch)
	api.HandleFunc("/{id}", s.handleDeleteRecord).Methods(http.MethodDelete)
	return router
}

// ServeHTTP makes Server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down with a five
// second grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	s.logger.Info("record backend listening", "addr", addr)

	select {
	case <-ctx.Done():
		s.logger.Info("record backend shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
