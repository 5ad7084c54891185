package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"pkt.systems/grove/api"
)

// Allocate reserves amount fresh storage slots on the backend and returns
// one resource per slot, in allocation order. amount must be at least 1;
// a smaller value is rejected before any network call.
func (c *Client) Allocate(ctx context.Context, amount int) ([]api.Resource, error) {
	if amount < 1 {
		return nil, fmt.Errorf("grove: allocation amount must be at least 1, got %d", amount)
	}
	query := url.Values{"amount": {strconv.Itoa(amount)}}
	c.logDebugCtx(ctx, "client.allocate.begin", "amount", amount)
	var links []api.AllocatedLink
	if err := c.postJSON(ctx, "/link/new", query, nil, &links); err != nil {
		c.logErrorCtx(ctx, "client.allocate.error", "amount", amount, "error", err)
		return nil, err
	}
	if len(links) != amount {
		return nil, fmt.Errorf("grove: allocation returned %d records, requested %d", len(links), amount)
	}
	resources := make([]api.Resource, 0, len(links))
	for i, link := range links {
		if link.StorageKey == "" {
			return nil, fmt.Errorf("grove: allocation response record %d missing storage_key", i)
		}
		if link.URI == "" {
			return nil, fmt.Errorf("grove: allocation response record %d missing uri", i)
		}
		resources = append(resources, c.resource(link.StorageKey))
	}
	c.logDebugCtx(ctx, "client.allocate.success", "amount", amount, "returned", len(resources))
	return resources, nil
}
