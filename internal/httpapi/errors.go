package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/checkout"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

// errorResponse is every error body this API sends.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// badRequestError marks a request body that could not be decoded.
type badRequestError struct {
	cause error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.cause.Error() }
func (e *badRequestError) Unwrap() error { return e.cause }

// writeError maps typed checkout/dealer errors onto HTTP status codes.
// Backend failures surface as 502 with the backend's own message so the
// user can act on it; anything unrecognized is a logged 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr   *checkout.ValidationError
		stepErr  *checkout.StepError
		availErr *checkout.AvailabilityError
		apiErr   *dealer.APIError
		reqErr   *badRequestError
	)

	switch {
	case errors.As(err, &valErr), errors.As(err, &reqErr):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: 400, Message: err.Error()})
	case errors.Is(err, checkout.ErrSessionNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Code: 404, Message: err.Error()})
	case errors.As(err, &stepErr),
		errors.Is(err, checkout.ErrSessionClosed),
		errors.Is(err, checkout.ErrVersionConflict):
		writeJSON(w, r, http.StatusConflict, errorResponse{Code: 409, Message: err.Error()})
	case errors.As(err, &availErr):
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Code: 422, Message: err.Error()})
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "the dealership backend rejected the request"
		}
		writeJSON(w, r, http.StatusBadGateway, errorResponse{Code: 502, Message: msg})
	default:
		zctx.From(r.Context()).Error("Unhandled checkout error", zap.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Code: 500, Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("Response encode failed", zap.Error(err))
	}
}
