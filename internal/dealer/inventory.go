package dealer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
)

// ListInventory returns inventory units matching the filter.
func (c *Client) ListInventory(ctx context.Context, filter InventoryFilter) ([]InventoryUnit, error) {
	query := url.Values{}
	if filter.VariantID != "" {
		query.Set("variantId", string(filter.VariantID))
	}
	if filter.ColorID != "" {
		query.Set("colorId", string(filter.ColorID))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}

	payload, err := c.do(ctx, http.MethodGet, "/inventory-units", query, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list inventory")
	}

	var units []InventoryUnit
	if err := json.Unmarshal(arrayPayload(payload, "units", "inventory", "items"), &units); err != nil {
		return nil, errors.Wrap(err, "decode inventory")
	}
	return units, nil
}

// CreateInventoryUnit registers a unit in stock. Used by the feed ingest
// tool, never by the checkout flow.
func (c *Client) CreateInventoryUnit(ctx context.Context, form InventoryUnitForm) error {
	if _, err := c.do(ctx, http.MethodPost, "/inventory-units", nil, form); err != nil {
		return errors.Wrapf(err, "create inventory unit %s", form.VIN)
	}
	return nil
}
