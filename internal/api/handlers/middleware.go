package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

const SessionCookie = "storefront_session"

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
)

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}

func userFrom(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

// savingWriter persists the session right before the response header goes
// out, so redirects carry the updated session.
type savingWriter struct {
	http.ResponseWriter
	save  func()
	saved bool
}

func (w *savingWriter) flush() {
	if !w.saved {
		w.saved = true
		w.save()
	}
}

func (w *savingWriter) WriteHeader(status int) {
	w.flush()
	w.ResponseWriter.WriteHeader(status)
}

func (w *savingWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessionTTL.Seconds()),
	})
}

// Sessions loads the visitor's session, or starts one, and stores it again
// when the handler changed it. A session whose ID changed (login, logout)
// replaces the old one and gets a fresh cookie.
func (s *Server) Sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *session.Session
		loadedID := ""
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			loaded, err := s.store.Load(ctx, c.Value)
			switch {
			case err == nil:
				sess = loaded
				loadedID = loaded.ID
			case errors.Is(err, session.ErrNotFound):
			default:
				s.logger.Error("failed to load session", zap.Error(err))
				internalError(w, "session unavailable")
				return
			}
		}

		if sess == nil {
			sess = session.New()
		}

		original, _ := json.Marshal(sess)

		sw := &savingWriter{ResponseWriter: w}
		sw.save = func() {
			current, err := json.Marshal(sess)
			if err == nil && bytes.Equal(original, current) {
				return
			}
			if err := s.store.Save(ctx, sess); err != nil {
				s.logger.Error("failed to save session", zap.String("session", sess.ID), zap.Error(err))
				return
			}
			if sess.ID != loadedID {
				s.setSessionCookie(w, sess.ID)
				if loadedID != "" {
					if err := s.store.Delete(ctx, loadedID); err != nil {
						s.logger.Warn("failed to delete old session", zap.Error(err))
					}
				}
			}
		}

		next.ServeHTTP(sw, r.WithContext(context.WithValue(ctx, sessionKey, sess)))
		sw.flush()
	})
}

// RequireLogin sends anonymous visitors to the login page.
func (s *Server) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.UserID <= 0 {
			target := "/accounts/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.UserID <= 0 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}

		user, err := s.accounts.Get(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		if !user.IsStaff {
			writeError(w, http.StatusForbidden, "forbidden", "staff only", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
