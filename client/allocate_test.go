package client_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"pkt.systems/grove/api"
	"pkt.systems/grove/client"
)

func TestAllocateReturnsDistinctDerivedResources(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	resources, err := cli.Allocate(context.Background(), 5)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(resources) != 5 {
		t.Fatalf("got %d resources, want 5", len(resources))
	}
	seen := map[string]bool{}
	for _, res := range resources {
		if res.StorageKey == "" {
			t.Fatalf("empty storage key in %+v", res)
		}
		if seen[res.StorageKey] {
			t.Fatalf("duplicate storage key %s", res.StorageKey)
		}
		seen[res.StorageKey] = true
		if want := api.Scheme + "://" + res.StorageKey; res.URI != want {
			t.Fatalf("uri = %q, want %q", res.URI, want)
		}
		if want := cli.BaseURL() + "/" + res.StorageKey; res.GatewayURL != want {
			t.Fatalf("gateway url = %q, want %q", res.GatewayURL, want)
		}
	}
}

func TestAllocateRejectsNonPositiveAmountBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	cli := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	for _, amount := range []int{0, -1, -100} {
		if _, err := cli.Allocate(context.Background(), amount); err == nil {
			t.Fatalf("amount %d: expected error", amount)
		}
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("backend saw %d requests, want 0", n)
	}
}

func TestAllocateShortResponseIsFatal(t *testing.T) {
	cases := []struct {
		name   string
		amount int
		body   string
	}{
		{"empty array", 1, `[]`},
		{"fewer than requested", 3, `[{"storage_key":"k1","uri":"lens://k1"}]`},
		{"more than requested", 1, `[{"storage_key":"k1","uri":"lens://k1"},{"storage_key":"k2","uri":"lens://k2"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /link/new", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})
			cli := newTestClient(t, mux)
			_, err := cli.Allocate(context.Background(), tc.amount)
			if err == nil || !strings.Contains(err.Error(), "requested") {
				t.Fatalf("err = %v, want record count mismatch", err)
			}
		})
	}
}

func TestUploadFolderSurvivesEmptyAllocationResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /link/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	cli := newTestClient(t, mux)

	_, err := cli.UploadFolder(context.Background(), []client.File{
		client.FileFromBytes("a.txt", "text/plain", []byte("a")),
	}, client.UploadFolderOptions{})
	if err == nil {
		t.Fatalf("expected error for empty allocation response")
	}
}

func TestAllocateMissingRequiredFieldsIsFatal(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing storage_key", `[{"uri":"lens://abc"}]`, "missing storage_key"},
		{"missing uri", `[{"storage_key":"abc"}]`, "missing uri"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /link/new", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})
			cli := newTestClient(t, mux)
			_, err := cli.Allocate(context.Background(), 1)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want to contain %q", err, tc.want)
			}
		})
	}
}
