package main

import (
	"context"
	"testing"

	"github.com/spf13/viper"

	"pkt.systems/grove/api"
)

func TestParseACLFlag(t *testing.T) {
	acl, err := parseACLFlag("", 232)
	if err != nil || acl != nil {
		t.Fatalf("empty flag: acl=%v err=%v, want default nil policy", acl, err)
	}
	acl, err = parseACLFlag("immutable", 232)
	if err != nil || acl != nil {
		t.Fatalf("immutable flag: acl=%v err=%v", acl, err)
	}
	acl, err = parseACLFlag("wallet:0xfeed", 232)
	if err != nil {
		t.Fatalf("wallet flag: %v", err)
	}
	wallet, ok := acl.(api.WalletAddressAcl)
	if !ok || wallet.Address != "0xfeed" || wallet.ChainID != 232 {
		t.Fatalf("wallet flag parsed to %+v", acl)
	}
	acl, err = parseACLFlag("lens:0xacc", 37111)
	if err != nil {
		t.Fatalf("lens flag: %v", err)
	}
	account, ok := acl.(api.LensAccountAcl)
	if !ok || account.Account != "0xacc" || account.ChainID != 37111 {
		t.Fatalf("lens flag parsed to %+v", acl)
	}
	for _, bad := range []string{"wallet:", "lens:", "bogus:0x1", "wallet"} {
		if _, err := parseACLFlag(bad, 232); err == nil {
			t.Fatalf("flag %q accepted", bad)
		}
	}
}

func TestResolveEnvironment(t *testing.T) {
	v := viper.New()
	v.Set(cfgEnv, "testnet")
	env, err := resolveEnvironment(v)
	if err != nil {
		t.Fatalf("testnet: %v", err)
	}
	if env.ChainID != 37111 {
		t.Fatalf("testnet chain id = %d", env.ChainID)
	}

	v.Set(cfgServer, "http://localhost:8080")
	v.Set(cfgChainID, int64(999))
	env, err = resolveEnvironment(v)
	if err != nil {
		t.Fatalf("custom: %v", err)
	}
	if env.BaseURL != "http://localhost:8080" || env.ChainID != 999 {
		t.Fatalf("custom env = %+v", env)
	}

	v.Set(cfgEnv, "mars")
	if _, err := resolveEnvironment(v); err == nil {
		t.Fatalf("unknown environment accepted")
	}
}

func TestExecSigner(t *testing.T) {
	signer := execSigner("cat")
	signature, err := signer.Sign(context.Background(), "challenge text")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signature != "challenge text" {
		t.Fatalf("signature = %q", signature)
	}

	if _, err := execSigner("false").Sign(context.Background(), "x"); err == nil {
		t.Fatalf("failing command accepted")
	}
	if _, err := execSigner("true").Sign(context.Background(), "x"); err == nil {
		t.Fatalf("empty signature accepted")
	}
}
