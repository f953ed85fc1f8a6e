package dealer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
)

// CreateCustomer creates a customer record and returns it with the
// backend-issued id.
func (c *Client) CreateCustomer(ctx context.Context, form CustomerForm) (*Customer, error) {
	payload, err := c.do(ctx, http.MethodPost, "/customers", nil, form)
	if err != nil {
		return nil, errors.Wrap(err, "create customer")
	}

	var cust Customer
	if err := json.Unmarshal(payload, &cust); err != nil {
		return nil, errors.Wrap(err, "decode customer")
	}
	if id := firstField(payload, "customerId", "id", "_id"); id != "" {
		cust.ID = ID(id)
	}
	if cust.ID == "" {
		return nil, errors.New("create customer: response carries no id")
	}
	return &cust, nil
}

// DeleteCustomer removes a customer record. Used only for saga
// compensation on checkout abandonment.
func (c *Client) DeleteCustomer(ctx context.Context, id ID) error {
	if _, err := c.do(ctx, http.MethodDelete, "/customers/"+url.PathEscape(string(id)), nil, nil); err != nil {
		return errors.Wrapf(err, "delete customer %s", id)
	}
	return nil
}
