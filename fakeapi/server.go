// Package fakeapi is an in-process implementation of the user management API. It reproduces the
// documented defects of the real service, so that the test suite can be exercised end to end
// without it. It is served by the "fakeapi" subcommand and used by the suite's own tests.
package fakeapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	APIMessage = "User Management API"
	APIVersion = "1.0.0"

	// DefaultRateLimit is the create-user limit per client address, in limiter format.
	DefaultRateLimit = "100-M"
)

type Options struct {
	RateLimit string
	Logger    *logrus.Logger
}

// Server is the fake API. It implements http.Handler.
type Server struct {
	router  *mux.Router
	store   *userStore
	limiter *limiter.Limiter
	logger  *logrus.Logger
}

func New(opts Options) (*Server, error) {
	formatted := opts.RateLimit
	if formatted == "" {
		formatted = DefaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	s := &Server{
		router:  mux.NewRouter(),
		store:   newUserStore(),
		limiter: limiter.New(memory.NewStore(), rate),
		logger:  logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.logRequests)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/bulk", s.handleBulkCreate).Methods(http.MethodPost)
	// registered ahead of /users/{id} so that "search" is not parsed as an ID
	r.HandleFunc("/users/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"client":   clientIP(r),
			"duration": time.Since(started),
		}).Debug("request")
	})
}

// clientIP identifies the caller for rate limiting. The forwarding headers are trusted as sent,
// so a caller can present any address it likes.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return "127.0.0.1"
}

// ListenAndServe serves the fake API until the context is cancelled.
func ListenAndServe(ctx context.Context, addr string, s *Server) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	s.logger.WithField("addr", addr).Info("fake user management API listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
