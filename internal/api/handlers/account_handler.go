package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/account"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	writePage(w, r, nil)
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	in := account.RegisterInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}

	user, err := s.accounts.Register(r.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicate):
		redirectWith(w, r, "/accounts/register", session.FlashError, "That username is already taken.")
		return
	case errors.Is(err, repository.ErrInvalidInput):
		redirectWith(w, r, "/accounts/register", session.FlashError, "Please check the form and try again.")
		return
	default:
		s.logger.Error("registration failed", zap.Error(err))
		redirectWith(w, r, "/accounts/register", session.FlashError, "Registration failed, please try again.")
		return
	}

	s.logIn(sessionFrom(r), user.UserID)
	redirectWith(w, r, "/", session.FlashSuccess, "Welcome, "+user.Username+"!")
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	writePage(w, r, map[string]string{"next": safeNext(r.URL.Query().Get("next"))})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Authenticate(r.Context(), strings.TrimSpace(r.FormValue("username")), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, account.ErrInvalidCredentials) {
			s.logger.Error("login failed", zap.Error(err))
		}
		redirectWith(w, r, "/accounts/login", session.FlashError, "Invalid username or password.")
		return
	}

	s.logIn(sessionFrom(r), user.UserID)
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusSeeOther)
}

// logIn gives the session a new ID so a pre-login cookie can't be reused.
// The cart survives.
func (s *Server) logIn(sess *session.Session, userID int) {
	fresh := session.New()
	sess.ID = fresh.ID
	sess.UserID = userID
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	*sess = *session.New()
	redirectWith(w, r, "/", session.FlashInfo, "You have been logged out.")
}

func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Get(r.Context(), sessionFrom(r).UserID)
	if err != nil {
		s.logger.Error("failed to load profile", zap.Error(err))
		internalError(w, "failed to load profile")
		return
	}
	writePage(w, r, user)
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	in := account.ProfileInput{
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}

	_, err := s.accounts.UpdateProfile(r.Context(), sessionFrom(r).UserID, in)
	switch {
	case err == nil:
		redirectWith(w, r, "/accounts/profile", session.FlashSuccess, "Profile updated.")
	case errors.Is(err, repository.ErrInvalidInput):
		redirectWith(w, r, "/accounts/profile", session.FlashError, "Please enter a valid email address.")
	default:
		s.logger.Error("profile update failed", zap.Error(err))
		redirectWith(w, r, "/accounts/profile", session.FlashError, "Your profile could not be updated.")
	}
}

func (s *Server) OrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.orders.History(r.Context(), sessionFrom(r).UserID)
	if err != nil {
		s.logger.Error("failed to load order history", zap.Error(err))
		internalError(w, "failed to get orders")
		return
	}
	writePage(w, r, history)
}

func (s *Server) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	order, err := s.orders.ForUser(r.Context(), sessionFrom(r).UserID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			notFound(w, "order")
			return
		}
		internalError(w, "failed to get order")
		return
	}
	writePage(w, r, order)
}

type contactForm struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,max=5000"`
}

func (s *Server) ContactPage(w http.ResponseWriter, r *http.Request) {
	writePage(w, r, nil)
}

func (s *Server) SendContact(w http.ResponseWriter, r *http.Request) {
	form := contactForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	if err := validate.Struct(form); err != nil {
		redirectWith(w, r, "/contact", session.FlashError, "Please fill in your name, a valid email, a subject and a message.")
		return
	}

	if err := s.contact.Contact(r.Context(), form.Name, form.Email, form.Subject, form.Message); err != nil {
		s.logger.Error("failed to send contact message", zap.Error(err))
		redirectWith(w, r, "/contact", session.FlashError, "Your message could not be sent. Please try again later.")
		return
	}

	redirectWith(w, r, "/contact", session.FlashSuccess, "Thanks! Your message has been sent.")
}
