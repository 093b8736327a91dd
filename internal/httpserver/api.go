package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"giftshop/internal/domain"
	"giftshop/internal/service"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 4 << 10

type valueRequest struct {
	Value *int `json:"value"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type catalogResponse struct {
	Entries         []domain.CatalogEntry `json:"entries"`
	Selection       domain.Selection      `json:"selection"`
	CheckoutLabel   string                `json:"checkout_label"`
	CheckoutEnabled bool                  `json:"checkout_enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) catalogResponse(sel domain.Selection) catalogResponse {
	label, enabled := service.CheckoutLabel(sel)
	return catalogResponse{
		Entries:         s.catalog.Entries(),
		Selection:       sel,
		CheckoutLabel:   label,
		CheckoutEnabled: enabled,
	}
}

func (s *Server) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	sel := s.catalog.Selection(SessionID(r.Context()))
	writeJSON(w, http.StatusOK, s.catalogResponse(sel))
}

func (s *Server) handleAPISelect(w http.ResponseWriter, r *http.Request) {
	value, err := s.decodeValue(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := s.catalog.SelectDenomination(r.Context(), SessionID(r.Context()), value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.catalogResponse(sel))
}

func (s *Server) handleAPICart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.carts.View(SessionID(r.Context())))
}

func (s *Server) handleAPIAdd(w http.ResponseWriter, r *http.Request) {
	value, err := s.decodeValue(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.catalog.AddToCart(r.Context(), SessionID(r.Context()), value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPIQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Quantity == nil {
		s.writeError(w, r, fmt.Errorf("%w: quantity is required", domain.ErrInvalidQuantity))
		return
	}
	view, err := s.carts.SetQuantity(r.Context(), SessionID(r.Context()), chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPIRemove(w http.ResponseWriter, r *http.Request) {
	view, err := s.carts.Remove(r.Context(), SessionID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeValue reads {"value": n} and checks n against the catalog.
func (s *Server) decodeValue(w http.ResponseWriter, r *http.Request) (int, error) {
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, err
	}
	if req.Value == nil {
		return 0, fmt.Errorf("%w: value is required", domain.ErrUnknownDenomination)
	}
	if err := s.catalog.Validate(*req.Value); err != nil {
		return 0, err
	}
	return *req.Value, nil
}

var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseFormInt reads an integer form field.
func parseFormInt(r *http.Request, field string, sentinel error) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", sentinel, field, raw)
	}
	return n, nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownDenomination),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSequencerStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}
