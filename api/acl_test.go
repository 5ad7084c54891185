package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAclDefaultsToImmutable(t *testing.T) {
	resolved := ResolveAcl(nil, 232)
	require.IsType(t, ImmutableAcl{}, resolved)
	assert.Equal(t, int64(232), resolved.(ImmutableAcl).ChainID)
}

func TestResolveAclKeepsExplicitPolicy(t *testing.T) {
	policy := WalletAddressAcl{Address: "0xabc", ChainID: 37111}
	resolved := ResolveAcl(policy, 232)
	assert.Equal(t, AclPolicy(policy), resolved)
}

func TestMarshalAclImmutable(t *testing.T) {
	data, err := MarshalAcl(ImmutableAcl{ChainID: 232})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{
		"template": "immutable",
		"chain_id": float64(232),
	}, doc)
}

func TestMarshalAclLensAccount(t *testing.T) {
	data, err := MarshalAcl(LensAccountAcl{Account: "0xacc", ChainID: 37111})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{
		"template":     "lens_account",
		"lens_account": "0xacc",
		"chain_id":     float64(37111),
	}, doc)
}

func TestMarshalAclWalletAddress(t *testing.T) {
	data, err := MarshalAcl(WalletAddressAcl{Address: "0xfeed", ChainID: 232})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{
		"template":       "wallet_address",
		"wallet_address": "0xfeed",
		"chain_id":       float64(232),
	}, doc)
}

func TestMarshalAclGeneric(t *testing.T) {
	data, err := MarshalAcl(GenericAcl{
		ContractAddress:   "0xc0ffee",
		ChainID:           232,
		FunctionSignature: "canMutate(address)",
		Params:            []string{"0xfeed"},
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{
		"template":           "generic_acl",
		"contract_address":   "0xc0ffee",
		"chain_id":           float64(232),
		"network_type":       "evm",
		"function_signature": "canMutate(address)",
		"params":             []any{"0xfeed"},
	}, doc)
}

func TestMarshalAclGenericNilParamsIsEmptyArray(t *testing.T) {
	data, err := MarshalAcl(GenericAcl{ContractAddress: "0xc0ffee", ChainID: 232, FunctionSignature: "f()"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"params":[]`)
}

type rogueAcl struct{ ImmutableAcl }

func TestMarshalAclPanicsOnUnknownVariant(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = MarshalAcl(rogueAcl{})
	})
}
