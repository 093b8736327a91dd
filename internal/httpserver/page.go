package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"giftshop/internal/domain"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").ParseFS(templateFS, "templates/page.html"))

const cartAnchor = "/#cart"

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view, err := s.pages.Build(r.Context(), SessionID(r.Context()))
	if err != nil {
		s.writePageError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (s *Server) handleSelectForm(w http.ResponseWriter, r *http.Request) {
	value, err := s.formValue(r)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	if _, err := s.catalog.SelectDenomination(r.Context(), SessionID(r.Context()), value); err != nil {
		s.writePageError(w, r, err)
		return
	}
	http.Redirect(w, r, cartAnchor, http.StatusSeeOther)
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	value, err := s.formValue(r)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	if _, err := s.catalog.AddToCart(r.Context(), SessionID(r.Context()), value); err != nil {
		s.writePageError(w, r, err)
		return
	}
	http.Redirect(w, r, cartAnchor, http.StatusSeeOther)
}

func (s *Server) handleQuantityForm(w http.ResponseWriter, r *http.Request) {
	quantity, err := parseFormInt(r, "quantity", domain.ErrInvalidQuantity)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	if _, err := s.carts.SetQuantity(r.Context(), SessionID(r.Context()), chi.URLParam(r, "id"), quantity); err != nil {
		s.writePageError(w, r, err)
		return
	}
	http.Redirect(w, r, cartAnchor, http.StatusSeeOther)
}

func (s *Server) handleRemoveForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.carts.Remove(r.Context(), SessionID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writePageError(w, r, err)
		return
	}
	http.Redirect(w, r, cartAnchor, http.StatusSeeOther)
}

func (s *Server) formValue(r *http.Request) (int, error) {
	value, err := parseFormInt(r, "value", domain.ErrUnknownDenomination)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.Validate(value); err != nil {
		return 0, err
	}
	return value, nil
}

func (s *Server) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	http.Error(w, err.Error(), status)
}
