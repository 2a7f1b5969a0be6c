package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"caja/internal/auth"
	"caja/internal/export"
	"caja/internal/services"
	appweb "caja/web"
)

const sessionCookie = "caja_session"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userKey      contextKey = "user"
)

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	exporter  *export.Exporter
	verifier  auth.CredentialVerifier
	sessions  *auth.SessionManager
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, exporter *export.Exporter, verifier auth.CredentialVerifier, sessions *auth.SessionManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:   ledger,
		exporter: exporter,
		verifier: verifier,
		sessions: sessions,
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withRequestLog(s.handleLogin))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/logout", s.withRequestLog(s.handleLogout))
	mux.HandleFunc("/menu", s.withRequestLog(s.withAuth(s.handleMenu)))
	mux.HandleFunc("/transaccion", s.withRequestLog(s.withAuth(s.handleTransaction)))
	mux.HandleFunc("/reporte", s.withRequestLog(s.withAuth(s.handleReport)))
	mux.HandleFunc("/reporte_excel", s.withRequestLog(s.withAuth(s.handleReportExcel)))
	mux.HandleFunc("/arqueo", s.withRequestLog(s.withAuth(s.handleClosing)))
	mux.HandleFunc("/guardar_arqueo", s.withRequestLog(s.withAuth(s.handleSaveClosing)))
	mux.HandleFunc("/arqueos", s.withRequestLog(s.withAuth(s.handleClosingHistory)))

	return s
}

// withRequestLog adds a request ID, security headers and request logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

// withAuth gates a handler behind a valid session cookie. A missing or
// invalid session redirects to the login page without rendering anything.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		user, err := s.sessions.Validate(cookie.Value)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
