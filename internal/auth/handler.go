package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ayush/vipauth/internal/models"
	"github.com/ayush/vipauth/internal/store"
	"github.com/ayush/vipauth/internal/views"
)

const (
	MsgPasswordPolicy    = "Password needs to have at least 6 chars and must contain at least one number, one lowercase and one uppercase letter."
	MsgPasswordTooLong   = "Password must be at most 72 bytes long."
	MsgSignupMandatory   = "All fields are mandatory. Please provide your username and password."
	MsgUsernameTaken     = "Username needs to be unique. Either username is already used."
	MsgLoginMandatory    = "Please enter both, username and password to login."
	MsgNotRegistered     = "Username is not registered. Try with other name."
	MsgIncorrectPassword = "Incorrect password."
	MsgUnexpected        = "An unexpected error occurred. Please try again later."
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// CreateUser returns models.ErrDuplicateUsername when the name is taken
	// and a *models.ValidationError when the record is rejected.
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	// FindByUsername returns store.ErrNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Renderer writes a named view.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, page views.Page) error
}

// HandlerFunc is an HTTP handler that reports failures instead of writing them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handler holds the auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions *SessionStore
	hasher   Hasher
	views    Renderer
	log      *slog.Logger
}

func NewHandler(users UserStore, sessions *SessionStore, hasher Hasher, views Renderer, log *slog.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, hasher: hasher, views: views, log: log}
}

// Wrap adapts fn to net/http. A returned *Error re-renders its form; any
// other error is logged and answered with the generic error page.
func (h *Handler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		sess := SessionFrom(r.Context())

		var fe *Error
		if errors.As(err, &fe) && fe.Kind != KindInternal {
			h.log.Debug("auth.form_error",
				"path", r.URL.Path,
				"kind", fe.Kind.String(),
				"message", fe.Message,
			)
			page := views.Page{ErrorMessage: fe.Message, Username: fe.Username, User: sess.CurrentUser}
			if rerr := h.views.Render(w, fe.Kind.Status(), fe.View, page); rerr != nil {
				h.log.Error("auth.render_failed", "view", fe.View, "err", rerr)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		h.log.Error("auth.unhandled_error", "method", r.Method, "path", r.URL.Path, "err", err)
		page := views.Page{ErrorMessage: MsgUnexpected, User: sess.CurrentUser}
		if rerr := h.views.Render(w, http.StatusInternalServerError, views.Error, page); rerr != nil {
			h.log.Error("auth.render_failed", "view", views.Error, "err", rerr)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// View returns a handler rendering name with the session user.
func (h *Handler) View(name string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return h.views.Render(w, http.StatusOK, name, views.Page{User: SessionFrom(r.Context()).CurrentUser})
	}
}

// Signup creates an account from the submitted form.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return formError(KindInvalidInput, views.Signup, "", MsgSignupMandatory, err)
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	// The policy runs first, so an empty password reports the policy message.
	if err := ValidatePassword(password); err != nil {
		return formError(KindInvalidInput, views.Signup, username, MsgPasswordPolicy, err)
	}
	if username == "" || password == "" {
		return formError(KindInvalidInput, views.Signup, username, MsgSignupMandatory, nil)
	}

	hashed, err := h.hasher.Hash(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return formError(KindInvalidInput, views.Signup, username, MsgPasswordTooLong, err)
	}
	if err != nil {
		return err
	}

	user, err := h.users.CreateUser(r.Context(), models.User{Username: username, PasswordHash: hashed})
	var verr *models.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicateUsername):
		return formError(KindConflict, views.Signup, username, MsgUsernameTaken, err)
	case errors.As(err, &verr):
		return formError(KindInvalidRecord, views.Signup, username, verr.Error(), err)
	default:
		return err
	}

	h.log.Info("auth.user_created", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, "/userProfile?username="+url.QueryEscape(user.Username), http.StatusSeeOther)
	return nil
}

// Login verifies credentials and attaches the user to the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return formError(KindInvalidInput, views.Login, "", MsgLoginMandatory, err)
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if username == "" || password == "" {
		return formError(KindInvalidInput, views.Login, username, MsgLoginMandatory, nil)
	}

	user, err := h.users.FindByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		return formError(KindUnauthorized, views.Login, username, MsgNotRegistered, nil)
	}
	if err != nil {
		return err
	}

	ok, err := h.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return err
	}
	if !ok {
		return formError(KindUnauthorized, views.Login, username, MsgIncorrectPassword, nil)
	}

	if err := h.sessions.Establish(r.Context(), w, SessionFrom(r.Context()), user); err != nil {
		return err
	}
	h.log.Info("auth.login", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, "/userProfile", http.StatusSeeOther)
	return nil
}

// Logout destroys the session and sends the browser home.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := SessionFrom(r.Context())
	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}
