package http

import (
	"log/slog"
	"net/http"
	"time"
)

type loginView struct {
	Message string
}

// handleLogin serves the login form and processes credential submissions.
// It also owns the root path, so anything unrouted 404s instead of falling
// through to the form.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, r, "login.html", loginView{})
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse login form error", "error", err)
		s.render(w, r, "login.html", loginView{Message: "Formato de solicitud no válido"})
		return
	}

	user := sanitizeInput(r.Form.Get("usuario"))
	password := r.Form.Get("clave")

	if err := s.verifier.Verify(user, password); err != nil {
		slog.WarnContext(r.Context(), "Login rejected", "user", user)
		s.render(w, r, "login.html", loginView{Message: "Usuario o clave incorrectos"})
		return
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session issue error", "error", err, "user", user)
		s.render(w, r, "login.html", loginView{Message: "No se pudo iniciar sesión"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.InfoContext(r.Context(), "Login accepted", "user", user)
	http.Redirect(w, r, "/menu", http.StatusSeeOther)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "menu.html", struct{ User string }{User: userFromContext(r.Context())})
}

// handleLogout clears the session cookie unconditionally and redirects to
// the login page. It is not gated: an expired session ends up in the same
// place either way.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
