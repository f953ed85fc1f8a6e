package dealer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
)

// CreatePayment records a payment against an existing order.
func (c *Client) CreatePayment(ctx context.Context, form PaymentForm) (*Payment, error) {
	payload, err := c.do(ctx, http.MethodPost, "/payments", nil, form)
	if err != nil {
		return nil, errors.Wrap(err, "create payment")
	}

	var p Payment
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrap(err, "decode payment")
	}
	if id := firstField(payload, "paymentId", "id", "_id"); id != "" {
		p.ID = ID(id)
	}
	if p.ID == "" {
		return nil, errors.New("create payment: response carries no id")
	}
	return &p, nil
}

// DeletePayment removes a payment. Used only for saga compensation.
func (c *Client) DeletePayment(ctx context.Context, id ID) error {
	if _, err := c.do(ctx, http.MethodDelete, "/payments/"+url.PathEscape(string(id)), nil, nil); err != nil {
		return errors.Wrapf(err, "delete payment %s", id)
	}
	return nil
}
