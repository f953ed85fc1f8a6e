package dealer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
)

// ListVariants returns the vehicle variant catalog.
func (c *Client) ListVariants(ctx context.Context) ([]Variant, error) {
	payload, err := c.do(ctx, http.MethodGet, "/vehicle-variants", nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list variants")
	}

	var variants []Variant
	if err := json.Unmarshal(arrayPayload(payload, "variants", "items"), &variants); err != nil {
		return nil, errors.Wrap(err, "decode variants")
	}
	return variants, nil
}

// ListColors returns the vehicle color catalog.
func (c *Client) ListColors(ctx context.Context) ([]Color, error) {
	payload, err := c.do(ctx, http.MethodGet, "/vehicle-colors", nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list colors")
	}

	var colors []Color
	if err := json.Unmarshal(arrayPayload(payload, "colors", "items"), &colors); err != nil {
		return nil, errors.Wrap(err, "decode colors")
	}
	return colors, nil
}
