package dealer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
)

// CreateOrder places an order and returns it with the backend-issued id
// and order number. The payment step depends on both, so a response
// without an id is an error even when the status was 2xx.
func (c *Client) CreateOrder(ctx context.Context, form OrderForm) (*Order, error) {
	payload, err := c.do(ctx, http.MethodPost, "/orders", nil, form)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	var o Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	if id := firstField(payload, "orderId", "id", "_id"); id != "" {
		o.ID = ID(id)
	}
	if num := firstField(payload, "orderNumber", "orderNo", "code"); num != "" {
		o.Number = num
	}
	if o.ID == "" {
		return nil, errors.New("create order: response carries no id")
	}
	return &o, nil
}

// DeleteOrder removes an order. Used only for saga compensation.
func (c *Client) DeleteOrder(ctx context.Context, id ID) error {
	if _, err := c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(string(id)), nil, nil); err != nil {
		return errors.Wrapf(err, "delete order %s", id)
	}
	return nil
}
