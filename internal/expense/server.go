package expense

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brokemate/brokemate/internal/advisor"
)

// contextKey is a private type for request context values
type contextKey string

const usernameKey contextKey = "username"

// Server handles HTTP requests for the expense API
type Server struct {
	service *Service
	advisor advisor.Responder
	tokens  *TokenManager
	router  chi.Router
}

// NewServer creates a Server with routes registered. allowedOrigins feeds
// the CORS middleware; an empty list allows any origin.
func NewServer(service *Service, responder advisor.Responder, tokens *TokenManager, allowedOrigins []string) *Server {
	s := &Server{
		service: service,
		advisor: responder,
		tokens:  tokens,
		router:  chi.NewRouter(),
	}
	s.registerRoutes(allowedOrigins)
	return s
}

func (s *Server) registerRoutes(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	// A handler panic becomes a 500 instead of a dropped connection
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	// Public endpoints
	s.router.Get("/", s.handleHealth)
	s.router.Post("/register", s.handleRegister)
	s.router.Post("/token", s.handleToken)

	// Everything else requires a bearer token
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/add-expense", s.handleAddExpense)
		r.Put("/edit-expense/{id}", s.handleEditExpense)
		r.Post("/flag-expense", s.handleFlagExpense)
		r.Delete("/delete-expense/{id}", s.handleDeleteExpense)
		r.Post("/process-receipt", s.handleProcessReceipt)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/chat", s.handleChat)
	})
}

// requireAuth validates the bearer token and stashes the username in the
// request context
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		username, err := s.tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser pulls the authenticated username from the request context
func currentUser(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.router)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
