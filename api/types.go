// Package api defines the wire-level types exchanged with a grove storage
// backend. The SDK in pkt.systems/grove/client and the CLI share these
// definitions; they carry no behaviour beyond JSON shape and a few
// enumerations.
package api

// Scheme is the URI scheme used for canonical resource addresses
// (lens://<storage-key>).
const Scheme = "lens"

// AllocatedLink models one record of the POST /link/new response.
type AllocatedLink struct {
	// StorageKey is the backend-issued identifier for the reserved slot.
	StorageKey string `json:"storage_key"`
	// URI is the canonical scheme-prefixed address for the slot.
	URI string `json:"uri"`
	// GatewayURL is a directly fetchable URL for the slot, when the
	// backend reports one.
	GatewayURL string `json:"gateway_url,omitempty"`
}

// Resource bundles a storage key with both of its addressable forms. The
// URI and gateway URL always derive from the same key.
type Resource struct {
	// StorageKey is the backend-issued identifier for the stored object.
	StorageKey string `json:"storage_key"`
	// URI is the canonical lens:// address.
	URI string `json:"uri"`
	// GatewayURL is the directly fetchable HTTP URL for the object.
	GatewayURL string `json:"gateway_url"`
}

// Action enumerates the mutations that require challenge authorization.
type Action string

const (
	// ActionEdit authorizes replacing the content of a mutable resource.
	ActionEdit Action = "edit"
	// ActionDelete authorizes removing a mutable resource.
	ActionDelete Action = "delete"
)

// ChallengeRequest models the JSON payload for POST /challenge/new.
type ChallengeRequest struct {
	// StorageKey identifies the resource the caller intends to mutate.
	StorageKey string `json:"storage_key"`
	// Action is the mutation being authorized (edit or delete).
	Action Action `json:"action"`
}

// ChallengeResponse is the backend-issued single-use challenge.
type ChallengeResponse struct {
	// Message is the text that must be signed by the controlling key.
	Message string `json:"message"`
	// SecretRandom is the per-challenge nonce echoed back on submit.
	SecretRandom string `json:"secret_random"`
}

// SignChallengeRequest models the JSON payload for POST /challenge/sign.
type SignChallengeRequest struct {
	// Message is the challenge text that was signed.
	Message string `json:"message"`
	// SecretRandom is the nonce from the originating challenge.
	SecretRandom string `json:"secret_random"`
	// Signature is the signer's signature over Message.
	Signature string `json:"signature"`
}

// SignChallengeResponse acknowledges a verified signature.
type SignChallengeResponse struct {
	// ChallengeCID identifies the verified challenge; it accompanies the
	// mutating request as the challenge_cid query parameter.
	ChallengeCID string `json:"challenge_cid"`
}

// StatusResponse models GET /status/{storageKey}.
type StatusResponse struct {
	// StorageKey identifies the resource being reported on.
	StorageKey string `json:"storage_key"`
	// Status is the backend's current propagation state for the resource.
	Status Status `json:"status"`
	// Progress is a 0-100 percentage. It is informational and not
	// guaranteed to be monotonic between polls.
	Progress float64 `json:"progress"`
}

// ErrorResponse is the backend error envelope returned on non-2xx
// responses.
type ErrorResponse struct {
	// Message is the human-readable failure description.
	Message string `json:"message"`
}
