package api

import (
	"encoding/json"
	"fmt"
)

// AclFilename is the fixed multipart part name carrying the ACL document.
const AclFilename = "lens-acl.json"

// NetworkTypeEVM is the single network family supported by the backend.
// Every ACL wire document that names a network uses it.
const NetworkTypeEVM = "evm"

// ACL template discriminants as they appear on the wire.
const (
	TemplateImmutable     = "immutable"
	TemplateLensAccount   = "lens_account"
	TemplateWalletAddress = "wallet_address"
	TemplateGenericAcl    = "generic_acl"
)

// AclPolicy is the closed set of access-control policies that can be
// attached to a resource. Exactly one variant applies per resource. The
// set is sealed: only the types in this package implement it.
type AclPolicy interface {
	aclPolicy()
}

// ImmutableAcl freezes a resource: it can never be edited or deleted.
// It is the default policy when an upload supplies none.
type ImmutableAcl struct {
	// ChainID scopes the policy to one chain.
	ChainID int64
}

// LensAccountAcl authorizes mutations for signers that recover to the
// designated Lens account.
type LensAccountAcl struct {
	// Account is the Lens account address allowed to mutate.
	Account string
	// ChainID scopes the policy to one chain.
	ChainID int64
}

// WalletAddressAcl authorizes mutations for one external wallet address.
type WalletAddressAcl struct {
	// Address is the wallet address allowed to mutate.
	Address string
	// ChainID scopes the policy to one chain.
	ChainID int64
}

// GenericAcl delegates the authorization decision to a contract call.
// The backend evaluates it; the client treats it as opaque configuration.
type GenericAcl struct {
	// ContractAddress is the contract consulted for authorization.
	ContractAddress string
	// ChainID scopes the policy to one chain.
	ChainID int64
	// FunctionSignature is the contract function evaluated by the backend.
	FunctionSignature string
	// Params are the arguments passed to the contract function.
	Params []string
}

func (ImmutableAcl) aclPolicy()     {}
func (LensAccountAcl) aclPolicy()   {}
func (WalletAddressAcl) aclPolicy() {}
func (GenericAcl) aclPolicy()       {}

// ResolveAcl applies the default policy when the caller supplied none: a
// nil policy resolves to ImmutableAcl bound to defaultChainID. A non-nil
// policy is returned unchanged.
func ResolveAcl(policy AclPolicy, defaultChainID int64) AclPolicy {
	if policy == nil {
		return ImmutableAcl{ChainID: defaultChainID}
	}
	return policy
}

// MarshalAcl serializes a resolved policy into the lens-acl.json wire
// document. Each variant emits its template discriminant plus exactly its
// own fields. The variant set is closed; encountering any other dynamic
// type is a programming error and panics.
func MarshalAcl(policy AclPolicy) ([]byte, error) {
	switch p := policy.(type) {
	case ImmutableAcl:
		return json.Marshal(struct {
			Template string `json:"template"`
			ChainID  int64  `json:"chain_id"`
		}{TemplateImmutable, p.ChainID})
	case LensAccountAcl:
		return json.Marshal(struct {
			Template string `json:"template"`
			Account  string `json:"lens_account"`
			ChainID  int64  `json:"chain_id"`
		}{TemplateLensAccount, p.Account, p.ChainID})
	case WalletAddressAcl:
		return json.Marshal(struct {
			Template string `json:"template"`
			Address  string `json:"wallet_address"`
			ChainID  int64  `json:"chain_id"`
		}{TemplateWalletAddress, p.Address, p.ChainID})
	case GenericAcl:
		return json.Marshal(struct {
			Template          string   `json:"template"`
			ContractAddress   string   `json:"contract_address"`
			ChainID           int64    `json:"chain_id"`
			NetworkType       string   `json:"network_type"`
			FunctionSignature string   `json:"function_signature"`
			Params            []string `json:"params"`
		}{TemplateGenericAcl, p.ContractAddress, p.ChainID, NetworkTypeEVM, p.FunctionSignature, params(p.Params)})
	default:
		panic(fmt.Sprintf("api: unknown acl policy variant %T", policy))
	}
}

// params normalizes a nil slice so the wire document always carries an
// array, never null.
func params(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
