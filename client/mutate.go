package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pkt.systems/grove/api"
)

// EditFile replaces the content of a previously uploaded mutable
// resource. The signer must prove control of a key the resource's ACL
// authorizes; a fresh challenge is requested for every call.
func (c *Client) EditFile(ctx context.Context, keyOrURI string, file File, signer Signer, opts UploadOptions) (*UploadResult, error) {
	key := NormalizeStorageKey(keyOrURI)
	if key == "" {
		return nil, fmt.Errorf("grove: storage key required")
	}
	auth, err := c.authorize(ctx, api.ActionEdit, key, signer)
	if err != nil {
		return nil, err
	}
	policy := api.ResolveAcl(opts.ACL, c.chainID)
	aclDoc, err := api.MarshalAcl(policy)
	if err != nil {
		return nil, err
	}
	res := c.resource(key)
	list := newPartList([]api.Resource{res})
	if _, err := list.addFile(file); err != nil {
		return nil, err
	}
	list.addACL(aclDoc)
	body, err := c.encodeBody(ctx, list.parts)
	if err != nil {
		return nil, err
	}
	c.logInfoCtx(ctx, "client.edit.begin", "key", key, "name", file.Name, "bytes", file.Size)
	if err := c.sendBody(ctx, http.MethodPut, "/"+key, auth.query(), body); err != nil {
		c.logErrorCtx(ctx, "client.edit.error", "key", key, "error", err)
		return nil, err
	}
	c.logInfoCtx(ctx, "client.edit.success", "key", key, "uri", res.URI)
	return &UploadResult{Resource: res, client: c}, nil
}

// EditJSON marshals v and edits the resource with it as application/json
// content.
func (c *Client) EditJSON(ctx context.Context, keyOrURI string, v any, signer Signer, opts UploadOptions) (*UploadResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grove: marshal edit payload: %w", err)
	}
	return c.EditFile(ctx, keyOrURI, FileFromBytes("data.json", "application/json", data), signer, opts)
}

// Delete removes a mutable resource after authorizing the action with
// the signer.
func (c *Client) Delete(ctx context.Context, keyOrURI string, signer Signer) error {
	key := NormalizeStorageKey(keyOrURI)
	if key == "" {
		return fmt.Errorf("grove: storage key required")
	}
	auth, err := c.authorize(ctx, api.ActionDelete, key, signer)
	if err != nil {
		return err
	}
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodDelete, c.endpoint("/"+key, auth.query()), nil)
	if err != nil {
		return err
	}
	c.applyCorrelationHeader(ctx, req)
	c.logInfoCtx(ctx, "client.delete.begin", "key", key)
	if err := c.execute(ctx, req, "/"+key, nil); err != nil {
		c.logErrorCtx(ctx, "client.delete.error", "key", key, "error", err)
		return err
	}
	c.logInfoCtx(ctx, "client.delete.success", "key", key)
	return nil
}
