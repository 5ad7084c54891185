// Package client provides the Go SDK for talking to a grove storage
// backend over HTTP. It allocates storage slots, uploads single files,
// JSON documents, and folders, attaches access-control policies, and
// supports later authenticated edits and deletes of mutable resources,
// plus polling for asynchronous propagation of writes.
//
// # Quick start
//
// Construct a client for an environment and upload a file:
//
//	ctx := context.Background()
//	cli, err := client.New(client.Production())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := cli.UploadFile(ctx, client.FileFromBytes("hello.txt", "text/plain", data), client.UploadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := res.WaitForPropagation(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.URI, res.GatewayURL)
//
// With no explicit ACL an upload is immutable: it can never be edited or
// deleted. To keep a resource mutable, attach a policy naming who may
// mutate it:
//
//	res, err := cli.UploadFile(ctx, file, client.UploadOptions{
//	    ACL: api.WalletAddressAcl{Address: "0xabc...", ChainID: 232},
//	})
//
// # Mutation
//
// Edits and deletes require a challenge/response round trip proving
// control of an authorized signing key. The SDK drives the protocol; the
// caller supplies the signing capability:
//
//	signer := client.SignerFunc(func(ctx context.Context, message string) (string, error) {
//	    return wallet.SignMessage(ctx, message)
//	})
//	if err := cli.Delete(ctx, res.URI, signer); err != nil {
//	    log.Fatal(err)
//	}
//
// Authorization failures surface as *AuthorizationError so callers can
// distinguish "not allowed to mutate" from transport or upload failures.
//
// # Propagation
//
// Writes propagate asynchronously. WaitForPropagation polls the status
// endpoint at a fixed interval until the backend reports done, a terminal
// error status, or the configured timeout elapses; terminal failures and
// timeouts surface as *PropagationError.
//
// # Multipart encoding
//
// Upload bodies are multipart. On runtimes whose HTTP stack delivers
// streamed request bodies end-to-end, parts are framed incrementally with
// a precomputed Content-Length; otherwise the SDK falls back to a
// buffered encoding. The capability is probed once per process via a
// loopback echo and cached.
package client
