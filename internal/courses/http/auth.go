package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/courses/internal/courses/service"
)

const (
	flashUsernameTaken      = "Username already exists!"
	flashRegistered         = "Registration successful! You can now log in."
	flashInvalidCredentials = "Invalid username or password!"
	flashLoggedIn           = "You have logged in successfully!"
	flashLoggedOut          = "You have logged out."
)

// credentials reads the username and password form fields. Both fields must
// be present; empty values are allowed.
func credentials(r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}

	u, hasUser := r.PostForm["username"]
	p, hasPass := r.PostForm["password"]
	if !hasUser || !hasPass {
		return "", "", false
	}
	return u[0], p[0], true
}

type RegisterHandler struct {
	Pages       *Pages
	AuthService *service.AuthService
}

func (h *RegisterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.Pages.render(w, r, h.Pages.Sessions.Load(r), "register", pageData{})
}

func (h *RegisterHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(r)
	if !ok {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	sess := h.Pages.Sessions.Load(r)

	_, err := h.AuthService.Register(r.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		h.Pages.redirectWithFlash(w, r, sess, flashUsernameTaken, "/register")
	case err != nil:
		internalError(w, r, "failed to register user", err)
	default:
		h.Pages.redirectWithFlash(w, r, sess, flashRegistered, "/login")
	}
}

type LoginHandler struct {
	Pages       *Pages
	AuthService *service.AuthService
}

func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.Pages.render(w, r, h.Pages.Sessions.Load(r), "login", pageData{})
}

func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(r)
	if !ok {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	sess := h.Pages.Sessions.Load(r)

	user, err := h.AuthService.Authenticate(r.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.Pages.redirectWithFlash(w, r, sess, flashInvalidCredentials, "/login")
	case err != nil:
		internalError(w, r, "failed to authenticate user", err)
	default:
		sess.SetUserID(user.ID)
		h.Pages.redirectWithFlash(w, r, sess, flashLoggedIn, "/")
	}
}

type LogoutHandler struct {
	Pages *Pages
}

// ServeHTTP clears the session user whether or not one was logged in.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := h.Pages.Sessions.Load(r)
	sess.ClearUserID()
	h.Pages.redirectWithFlash(w, r, sess, flashLoggedOut, "/")
}
