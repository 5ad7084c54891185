package client_test

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"testing"

	"pkt.systems/grove/api"
	"pkt.systems/grove/client"
)

func TestUploadFileDefaultsToImmutableWithChainID(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	res, err := cli.UploadFile(context.Background(), client.FileFromBytes("doc.txt", "text/plain", []byte("payload")), client.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	backend.mu.Lock()
	parts := backend.uploads[res.StorageKey]
	query := backend.uploadQry[res.StorageKey]
	backend.mu.Unlock()

	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if got := values.Get("chain_id"); got != strconv.FormatInt(testChainID, 10) {
		t.Fatalf("chain_id = %q, want %d", got, testChainID)
	}

	if len(parts) != 2 {
		t.Fatalf("received %d parts, want file + acl", len(parts))
	}
	if parts[0].name != res.StorageKey {
		t.Fatalf("file part name = %q, want storage key %q", parts[0].name, res.StorageKey)
	}
	if string(parts[0].data) != "payload" {
		t.Fatalf("file content = %q", parts[0].data)
	}
	if parts[1].name != api.AclFilename {
		t.Fatalf("acl part name = %q", parts[1].name)
	}
	var doc map[string]any
	if err := json.Unmarshal(parts[1].data, &doc); err != nil {
		t.Fatalf("acl document: %v", err)
	}
	if doc["template"] != api.TemplateImmutable {
		t.Fatalf("template = %v, want immutable", doc["template"])
	}
	if doc["chain_id"] != float64(testChainID) {
		t.Fatalf("chain_id = %v, want %d", doc["chain_id"], testChainID)
	}
}

func TestUploadFileMutablePolicyOmitsChainQuery(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	res, err := cli.UploadFile(context.Background(), client.FileFromBytes("doc.txt", "text/plain", []byte("x")), client.UploadOptions{
		ACL: api.LensAccountAcl{Account: "0xacc", ChainID: testChainID},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	backend.mu.Lock()
	query := backend.uploadQry[res.StorageKey]
	parts := backend.uploads[res.StorageKey]
	backend.mu.Unlock()

	if query != "" {
		t.Fatalf("mutable upload carried query %q", query)
	}
	var doc map[string]any
	if err := json.Unmarshal(parts[1].data, &doc); err != nil {
		t.Fatalf("acl document: %v", err)
	}
	if doc["template"] != api.TemplateLensAccount || doc["lens_account"] != "0xacc" {
		t.Fatalf("acl document = %v", doc)
	}
}

func TestUploadFolderBindsKeysInOrderAndIndexes(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	files := []client.File{
		client.FileFromBytes("a.txt", "text/plain", []byte("aaa")),
		client.FileFromBytes("b.txt", "text/plain", []byte("bbb")),
	}
	res, err := cli.UploadFolder(context.Background(), files, client.UploadFolderOptions{Index: true})
	if err != nil {
		t.Fatalf("upload folder: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("got %d file resources, want 2", len(res.Files))
	}
	if res.Folder.StorageKey == res.Files[0].StorageKey || res.Folder.StorageKey == res.Files[1].StorageKey {
		t.Fatalf("folder key collides with a file key: %+v", res)
	}

	backend.mu.Lock()
	parts := backend.uploads[res.Folder.StorageKey]
	backend.mu.Unlock()
	if len(parts) != 4 {
		t.Fatalf("received %d parts, want 2 files + index + acl", len(parts))
	}
	if parts[0].name != res.Files[0].StorageKey || parts[1].name != res.Files[1].StorageKey {
		t.Fatalf("file parts out of order: %q, %q", parts[0].name, parts[1].name)
	}
	if parts[2].name != client.IndexFilename {
		t.Fatalf("third part = %q, want index.json", parts[2].name)
	}
	var index struct {
		Files []string `json:"files"`
	}
	if err := json.Unmarshal(parts[2].data, &index); err != nil {
		t.Fatalf("index document: %v", err)
	}
	if len(index.Files) != 2 || index.Files[0] != res.Files[0].StorageKey || index.Files[1] != res.Files[1].StorageKey {
		t.Fatalf("index lists %v", index.Files)
	}
	if parts[3].name != api.AclFilename {
		t.Fatalf("last part = %q, want acl", parts[3].name)
	}
}

func TestUploadFolderMisnamedIndexFails(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	bad := client.FileFromBytes("listing.json", "application/json", []byte("{}"))
	_, err := cli.UploadFolder(context.Background(), []client.File{client.FileFromBytes("a", "", []byte("a"))}, client.UploadFolderOptions{IndexFile: &bad})
	if err == nil {
		t.Fatalf("misnamed index accepted")
	}
}

func TestEditFileSendsAuthorizedPut(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler())

	res, err := cli.EditFile(context.Background(), "lens://existing-key",
		client.FileFromBytes("v2.txt", "text/plain", []byte("version two")),
		fixedSigner("0xsig"),
		client.UploadOptions{ACL: api.WalletAddressAcl{Address: "0xfeed", ChainID: testChainID}},
	)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.StorageKey != "existing-key" {
		t.Fatalf("edit rebound key to %q", res.StorageKey)
	}

	backend.mu.Lock()
	parts := backend.uploads["existing-key"]
	query := backend.uploadQry["existing-key"]
	backend.mu.Unlock()

	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if values.Get("challenge_cid") != "bafychallenge" || values.Get("secret_random") != "nonce-1" {
		t.Fatalf("edit query = %q", query)
	}
	if len(parts) != 2 || parts[0].name != "existing-key" {
		t.Fatalf("edit parts = %+v", parts)
	}
	if string(parts[0].data) != "version two" {
		t.Fatalf("edit content = %q", parts[0].data)
	}
}

func TestBufferedMultipartOptionStillUploads(t *testing.T) {
	backend := newFakeBackend(t)
	cli := newTestClient(t, backend.handler(), client.WithBufferedMultipart())

	res, err := cli.UploadFile(context.Background(), client.FileFromBytes("doc", "", []byte("buffered")), client.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	backend.mu.Lock()
	parts := backend.uploads[res.StorageKey]
	backend.mu.Unlock()
	if len(parts) != 2 || string(parts[0].data) != "buffered" {
		t.Fatalf("buffered upload parts = %+v", parts)
	}
}
