package main

import (
	"fmt"
	"strings"

	"pkt.systems/grove/api"
)

// parseACLFlag turns the --acl flag value into a policy. Supported forms:
//
//	""                  default (immutable on the client's chain)
//	immutable           immutable on the client's chain
//	wallet:<address>    mutable by one wallet address
//	lens:<account>      mutable by one lens account
//
// chainID is the default chain identifier already resolved for the
// client.
func parseACLFlag(value string, chainID int64) (api.AclPolicy, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "immutable" {
		return nil, nil
	}
	kind, arg, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("invalid --acl %q (want immutable, wallet:<address>, or lens:<account>)", value)
	}
	arg = strings.TrimSpace(arg)
	switch kind {
	case "wallet":
		return api.WalletAddressAcl{Address: arg, ChainID: chainID}, nil
	case "lens":
		return api.LensAccountAcl{Account: arg, ChainID: chainID}, nil
	default:
		return nil, fmt.Errorf("unknown --acl policy %q", kind)
	}
}
