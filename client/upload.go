package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pkt.systems/grove/api"
)

// UploadOptions controls a single-file upload or edit.
type UploadOptions struct {
	// ACL is the access-control policy attached to the resource. Nil
	// resolves to an immutable policy bound to the client's chain ID,
	// which makes the resource permanent.
	ACL api.AclPolicy
}

// UploadResult is returned by uploads and edits. It bundles the resource
// with the issuing client so callers can await propagation directly.
type UploadResult struct {
	api.Resource
	client *Client
}

// WaitForPropagation blocks until the backend reports the resource done,
// using the client that produced this result.
func (r *UploadResult) WaitForPropagation(ctx context.Context) error {
	return r.client.WaitForPropagation(ctx, r.StorageKey)
}

// UploadFile allocates one storage slot and uploads file into it.
func (c *Client) UploadFile(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	resources, err := c.Allocate(ctx, 1)
	if err != nil {
		return nil, err
	}
	policy := api.ResolveAcl(opts.ACL, c.chainID)
	aclDoc, err := api.MarshalAcl(policy)
	if err != nil {
		return nil, err
	}
	list := newPartList(resources)
	bound, err := list.addFile(file)
	if err != nil {
		return nil, err
	}
	list.addACL(aclDoc)
	body, err := c.encodeBody(ctx, list.parts)
	if err != nil {
		return nil, err
	}
	c.logInfoCtx(ctx, "client.upload.begin", "key", bound.StorageKey, "name", file.Name, "bytes", file.Size)
	if err := c.sendBody(ctx, http.MethodPost, "/"+bound.StorageKey, createQuery(policy), body); err != nil {
		c.logErrorCtx(ctx, "client.upload.error", "key", bound.StorageKey, "error", err)
		return nil, err
	}
	c.logInfoCtx(ctx, "client.upload.success", "key", bound.StorageKey, "uri", bound.URI)
	return &UploadResult{Resource: bound, client: c}, nil
}

// UploadJSON marshals v and uploads it as a single application/json file.
func (c *Client) UploadJSON(ctx context.Context, v any, opts UploadOptions) (*UploadResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grove: marshal upload payload: %w", err)
	}
	return c.UploadFile(ctx, FileFromBytes("data.json", "application/json", data), opts)
}

// IndexFactory builds the index.json content for a folder upload from the
// resolved sibling resources.
type IndexFactory func(files []api.Resource) ([]byte, error)

// UploadFolderOptions controls a folder upload.
type UploadFolderOptions struct {
	// ACL is the policy applied to the folder and its files. Nil
	// resolves to an immutable policy bound to the client's chain ID.
	ACL api.AclPolicy
	// Index requests the default manifest listing every file's storage
	// key. Ignored when IndexFile or IndexFactory is set.
	Index bool
	// IndexFile supplies a finished manifest. Its name must be exactly
	// "index.json".
	IndexFile *File
	// IndexFactory builds the manifest from the resolved file resources.
	IndexFactory IndexFactory
}

// UploadFolderResult reports a completed folder upload.
type UploadFolderResult struct {
	// Folder is the resource addressing the folder itself.
	Folder api.Resource
	// Files are the file resources, in the order the files were given.
	Files []api.Resource
	client *Client
}

// WaitForPropagation blocks until the backend reports the folder done.
func (r *UploadFolderResult) WaitForPropagation(ctx context.Context) error {
	return r.client.WaitForPropagation(ctx, r.Folder.StorageKey)
}

// UploadFolder allocates a slot for the folder plus one per file and
// uploads all files as one multipart request against the folder's key.
func (c *Client) UploadFolder(ctx context.Context, files []File, opts UploadFolderOptions) (*UploadFolderResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("grove: folder upload requires at least one file")
	}
	resources, err := c.Allocate(ctx, len(files)+1)
	if err != nil {
		return nil, err
	}
	folder, fileKeys := resources[0], resources[1:]
	list := newPartList(fileKeys)
	bound := make([]api.Resource, 0, len(files))
	for _, f := range files {
		res, err := list.addFile(f)
		if err != nil {
			return nil, err
		}
		bound = append(bound, res)
	}
	index, err := folderIndexFile(opts, bound)
	if err != nil {
		return nil, err
	}
	if index != nil {
		if err := list.addIndex(*index); err != nil {
			return nil, err
		}
	}
	policy := api.ResolveAcl(opts.ACL, c.chainID)
	aclDoc, err := api.MarshalAcl(policy)
	if err != nil {
		return nil, err
	}
	list.addACL(aclDoc)
	body, err := c.encodeBody(ctx, list.parts)
	if err != nil {
		return nil, err
	}
	c.logInfoCtx(ctx, "client.upload_folder.begin", "folder", folder.StorageKey, "files", len(files))
	if err := c.sendBody(ctx, http.MethodPost, "/"+folder.StorageKey, createQuery(policy), body); err != nil {
		c.logErrorCtx(ctx, "client.upload_folder.error", "folder", folder.StorageKey, "error", err)
		return nil, err
	}
	c.logInfoCtx(ctx, "client.upload_folder.success", "folder", folder.StorageKey, "uri", folder.URI)
	return &UploadFolderResult{Folder: folder, Files: bound, client: c}, nil
}

// folderIndexFile resolves which index.json part, if any, a folder upload
// carries: a caller-supplied finished file, factory-produced content, or
// the default key listing.
func folderIndexFile(opts UploadFolderOptions, files []api.Resource) (*File, error) {
	switch {
	case opts.IndexFile != nil:
		if opts.IndexFile.Name != IndexFilename {
			return nil, fmt.Errorf("grove: index file must be named %q, got %q", IndexFilename, opts.IndexFile.Name)
		}
		f := *opts.IndexFile
		return &f, nil
	case opts.IndexFactory != nil:
		data, err := opts.IndexFactory(files)
		if err != nil {
			return nil, fmt.Errorf("grove: index factory: %w", err)
		}
		f := FileFromBytes(IndexFilename, "application/json", data)
		return &f, nil
	case opts.Index:
		keys := make([]string, len(files))
		for i, res := range files {
			keys[i] = res.StorageKey
		}
		data, err := json.Marshal(struct {
			Files []string `json:"files"`
		}{keys})
		if err != nil {
			return nil, err
		}
		f := FileFromBytes(IndexFilename, "application/json", data)
		return &f, nil
	}
	return nil, nil
}

// createQuery carries the chain ID on the immutable create path so the
// backend can pin the freeze to the right chain.
func createQuery(policy api.AclPolicy) url.Values {
	if immutable, ok := policy.(api.ImmutableAcl); ok {
		return url.Values{"chain_id": {strconv.FormatInt(immutable.ChainID, 10)}}
	}
	return nil
}
