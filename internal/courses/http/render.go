package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
	"github.com/aussiebroadwan/courses/internal/courses/service"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/pkg/httpx"
	"github.com/aussiebroadwan/courses/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = map[string]*template.Template{
	"index":    parsePage("index.html"),
	"course":   parsePage("course.html"),
	"register": parsePage("register.html"),
	"login":    parsePage("login.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// pageData is handed to every template.
type pageData struct {
	User    *domain.User
	Flashes []string

	Courses []domain.Course
	Course  domain.Course
}

// Pages holds what every HTML handler needs: the session codec and a way to
// resolve the logged-in user for the navigation bar.
type Pages struct {
	Sessions    *Sessions
	AuthService *service.AuthService
}

// currentUser resolves the session's user. A session pointing at a user
// that no longer exists is treated as anonymous.
func (p *Pages) currentUser(r *http.Request, sess *Session) (*domain.User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, nil
	}

	user, err := p.AuthService.GetUserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// render writes a full HTML page, consuming the session's pending flashes.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, sess *Session, page string, data pageData) {
	log := slogx.FromContext(r.Context())

	user, err := p.currentUser(r, sess)
	if err != nil {
		internalError(w, r, "failed to load current user", err)
		return
	}
	data.User = user
	data.Flashes = sess.PopFlashes()

	var buf bytes.Buffer
	if err := templates[page].Execute(&buf, data); err != nil {
		log.Error("failed to render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := p.Sessions.Save(w, sess); err != nil {
		internalError(w, r, "failed to save session", err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// redirectWithFlash queues msg and redirects to target.
func (p *Pages) redirectWithFlash(w http.ResponseWriter, r *http.Request, sess *Session, msg, target string) {
	sess.AddFlash(msg)
	if err := p.Sessions.Save(w, sess); err != nil {
		internalError(w, r, "failed to save session", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slogx.FromContext(r.Context()).Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
