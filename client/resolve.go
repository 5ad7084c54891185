package client

import (
	"fmt"
	"strings"

	"pkt.systems/grove/api"
)

// NormalizeStorageKey accepts either a bare storage key or a lens:// URI
// and returns the bare key.
func NormalizeStorageKey(keyOrURI string) string {
	key := strings.TrimSpace(keyOrURI)
	return strings.TrimPrefix(key, api.Scheme+"://")
}

// Resolve derives the full addressable resource for a storage key or
// lens:// URI. It performs no network call: both the canonical URI and
// the gateway URL derive deterministically from the key.
func (c *Client) Resolve(keyOrURI string) (api.Resource, error) {
	key := NormalizeStorageKey(keyOrURI)
	if key == "" {
		return api.Resource{}, fmt.Errorf("grove: storage key required")
	}
	return c.resource(key), nil
}

func (c *Client) resource(key string) api.Resource {
	return api.Resource{
		StorageKey: key,
		URI:        api.Scheme + "://" + key,
		GatewayURL: c.gatewayBase + "/" + key,
	}
}
