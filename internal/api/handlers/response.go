package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

var validate = validator.New()

type apiError struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// pageBody is what storefront GET endpoints return: the page data plus any
// messages queued by the previous request.
type pageBody struct {
	Messages []session.Flash `json:"messages"`
	Data     interface{}     `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func writePage(w http.ResponseWriter, r *http.Request, data interface{}) {
	messages := sessionFrom(r).PopFlash()
	if messages == nil {
		messages = []session.Flash{}
	}
	writeJSON(w, http.StatusOK, pageBody{Messages: messages, Data: data})
}

// redirectWith queues a message for the next page and sends the browser there.
func redirectWith(w http.ResponseWriter, r *http.Request, to string, level session.FlashLevel, message string) {
	if message != "" {
		sessionFrom(r).AddFlash(level, message)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+name+" id", nil)
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, "not_found", what+" not found", nil)
}

func internalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// validInput checks v against its validate tags and answers 400 with the
// failing fields when it does not pass.
func validInput(w http.ResponseWriter, v interface{}) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	details := map[string]string{}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		for _, f := range fields {
			details[f.Field()] = f.Tag()
		}
	}
	writeError(w, http.StatusBadRequest, "invalid_input", "validation failed", details)
	return false
}
