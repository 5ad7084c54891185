package client

import (
	"context"
	"fmt"
	"time"

	"pkt.systems/grove/api"
)

// PropagationError reports that waiting for a resource to propagate ended
// in failure: either the backend settled on a terminal error status, or
// the configured timeout elapsed first.
type PropagationError struct {
	// URI is the canonical address of the resource being waited on.
	URI string
	// Status is the terminal backend status, when one was observed.
	Status api.Status
	// Elapsed is the wall-clock time spent polling.
	Elapsed time.Duration
	// Timeout is true when the wait gave up without a terminal status.
	Timeout bool
}

func (e *PropagationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("grove: propagation of %s timed out after %s", e.URI, e.Elapsed)
	}
	return fmt.Sprintf("grove: propagation of %s failed with status %s", e.URI, e.Status)
}

// Status fetches the backend's current propagation state for a resource.
func (c *Client) Status(ctx context.Context, keyOrURI string) (*api.StatusResponse, error) {
	key := NormalizeStorageKey(keyOrURI)
	if key == "" {
		return nil, fmt.Errorf("grove: storage key required")
	}
	var status api.StatusResponse
	if err := c.getJSON(ctx, "/status/"+key, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WaitForPropagation polls a resource's status until the backend reports
// it done. A terminal error status fails immediately; any transport
// failure while polling is terminal as well. When no terminal status is
// observed within the configured propagation timeout, the wait fails with
// a timeout naming the resource URI.
func (c *Client) WaitForPropagation(ctx context.Context, keyOrURI string) error {
	key := NormalizeStorageKey(keyOrURI)
	if key == "" {
		return fmt.Errorf("grove: storage key required")
	}
	uri := api.Scheme + "://" + key
	start := time.Now()
	c.logDebugCtx(ctx, "client.propagation.begin", "key", key, "timeout", c.propagationTimeout, "interval", c.pollInterval)
	for {
		status, err := c.Status(ctx, key)
		if err != nil {
			return err
		}
		c.logTraceCtx(ctx, "client.propagation.poll", "key", key, "status", status.Status, "progress", status.Progress)
		if status.Status == api.StatusDone {
			c.logDebugCtx(ctx, "client.propagation.done", "key", key, "elapsed", time.Since(start))
			return nil
		}
		if status.Status.Failed() {
			c.logWarnCtx(ctx, "client.propagation.failed", "key", key, "status", status.Status)
			return &PropagationError{URI: uri, Status: status.Status, Elapsed: time.Since(start)}
		}
		if elapsed := time.Since(start); elapsed > c.propagationTimeout {
			c.logWarnCtx(ctx, "client.propagation.timeout", "key", key, "elapsed", elapsed)
			return &PropagationError{URI: uri, Elapsed: elapsed, Timeout: true}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}
