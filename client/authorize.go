package client

import (
	"context"
	"fmt"
	"net/url"

	"pkt.systems/grove/api"
)

// Signer is the external message-signing capability required to mutate a
// resource. Implementations typically delegate to a wallet or key
// management service; signing failures propagate to the caller
// unmodified.
type Signer interface {
	Sign(ctx context.Context, message string) (string, error)
}

// SignerFunc adapts a plain function to the Signer interface.
type SignerFunc func(ctx context.Context, message string) (string, error)

// Sign implements Signer.
func (f SignerFunc) Sign(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Authorization is the single-use token that must accompany a mutating
// request. It is scoped to one resource and one action and is discarded
// after use; every mutation requests a fresh challenge.
type Authorization struct {
	// ChallengeCID identifies the verified challenge.
	ChallengeCID string
	// Secret is the challenge nonce echoed back to the backend.
	Secret string
}

// query returns the authorization as the query parameters the backend
// expects on mutating requests.
func (a Authorization) query() url.Values {
	return url.Values{
		"challenge_cid": {a.ChallengeCID},
		"secret_random": {a.Secret},
	}
}

// AuthorizationError reports that the backend refused to authorize a
// mutation, at either the challenge or the signature-submission step.
// Callers can distinguish it from generic upload failures via errors.As.
type AuthorizationError struct {
	// Action is the mutation that was being authorized.
	Action api.Action
	// StorageKey identifies the resource the mutation targeted.
	StorageKey string
	// Err is the underlying backend failure.
	Err error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("grove: %s of %s not authorized: %v", e.Action, e.StorageKey, e.Err)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

// authorize runs the three-step challenge protocol: request a challenge
// for the action, sign its message, submit the signature. The steps are
// strictly sequential and nothing is retried; a failure at any step
// aborts the whole attempt.
func (c *Client) authorize(ctx context.Context, action api.Action, storageKey string, signer Signer) (Authorization, error) {
	if signer == nil {
		return Authorization{}, fmt.Errorf("grove: signer required to %s %s", action, storageKey)
	}
	c.logDebugCtx(ctx, "client.authorize.begin", "action", action, "key", storageKey)
	var challenge api.ChallengeResponse
	err := c.postJSON(ctx, "/challenge/new", nil, api.ChallengeRequest{StorageKey: storageKey, Action: action}, &challenge)
	if err != nil {
		c.logWarnCtx(ctx, "client.authorize.challenge_denied", "action", action, "key", storageKey, "error", err)
		return Authorization{}, &AuthorizationError{Action: action, StorageKey: storageKey, Err: err}
	}
	signature, err := signer.Sign(ctx, challenge.Message)
	if err != nil {
		// Signer failures are the caller's own capability failing and
		// propagate as-is.
		c.logWarnCtx(ctx, "client.authorize.sign_failed", "action", action, "key", storageKey, "error", err)
		return Authorization{}, err
	}
	var signed api.SignChallengeResponse
	err = c.postJSON(ctx, "/challenge/sign", nil, api.SignChallengeRequest{
		Message:      challenge.Message,
		SecretRandom: challenge.SecretRandom,
		Signature:    signature,
	}, &signed)
	if err != nil {
		c.logWarnCtx(ctx, "client.authorize.submit_denied", "action", action, "key", storageKey, "error", err)
		return Authorization{}, &AuthorizationError{Action: action, StorageKey: storageKey, Err: err}
	}
	c.logDebugCtx(ctx, "client.authorize.success", "action", action, "key", storageKey, "challenge_cid", signed.ChallengeCID)
	return Authorization{ChallengeCID: signed.ChallengeCID, Secret: challenge.SecretRandom}, nil
}
