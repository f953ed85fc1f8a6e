// Package httpapi exposes the checkout wizard over HTTP. Handlers stay
// thin: decode, delegate to the checkout service, map the result or the
// typed error back to a response.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/checkout"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

// Handler serves the wizard routes.
type Handler struct {
	svc *checkout.Service
}

// NewHandler constructs a Handler over the checkout service.
func NewHandler(svc *checkout.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the wizard router, mountable under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.start)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.abandon)
			r.Post("/customer", h.submitCustomer)
			r.Post("/skip-customer", h.skipCustomer)
			r.Get("/availability", h.availability)
			r.Post("/order", h.submitOrder)
			r.Post("/payment", h.submitPayment)
			r.Post("/back", h.back)
		})
	})
	return r
}

type startRequest struct {
	VehicleHint string `json:"vehicleHint"`
	ColorHint   string `json:"colorHint"`
}

type orderRequest struct {
	VariantID dealer.ID       `json:"variantId"`
	ColorID   dealer.ID       `json:"colorId"`
	Total     decimal.Decimal `json:"total"`
	Deposit   decimal.Decimal `json:"deposit"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.Start(r.Context(), checkout.StartRequest{
		VehicleHint: req.VehicleHint,
		ColorHint:   req.ColorHint,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sess)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) submitCustomer(w http.ResponseWriter, r *http.Request) {
	var form dealer.CustomerForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.SubmitCustomer(r.Context(), chi.URLParam(r, "sessionID"), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) skipCustomer(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.SkipCustomer(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	avail, err := h.svc.CheckAvailability(r.Context(),
		chi.URLParam(r, "sessionID"),
		dealer.ID(q.Get("variantId")),
		dealer.ID(q.Get("colorId")),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, avail)
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.SubmitOrder(r.Context(), chi.URLParam(r, "sessionID"), dealer.OrderForm{
		VariantID: req.VariantID,
		ColorID:   req.ColorID,
		Total:     req.Total,
		Deposit:   req.Deposit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.SubmitPayment(r.Context(), chi.URLParam(r, "sessionID"), dealer.PaymentForm{
		Amount: req.Amount,
		Method: req.Method,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Back(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (h *Handler) abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Abandon(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON request body. An empty body yields the zero value.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &badRequestError{cause: err}
	}
	return nil
}
