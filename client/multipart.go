package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"pkt.systems/grove/api"
)

// IndexFilename is the fixed multipart part name for a folder manifest.
const IndexFilename = "index.json"

// ErrNoKeyAvailable is returned when more files are bound to a body than
// storage keys were pre-allocated for it.
var ErrNoKeyAvailable = errors.New("grove: no key available")

// File describes one payload handed to the SDK.
type File struct {
	// Name is the filename reported in the multipart framing. Index
	// files must be named exactly "index.json".
	Name string
	// ContentType is the payload media type. Empty defaults to
	// application/octet-stream.
	ContentType string
	// Content provides the payload bytes. It is consumed once.
	Content io.Reader
	// Size is the exact payload length in bytes. The streaming encoder
	// relies on it to declare the body length ahead of transmission.
	Size int64
}

// FileFromBytes wraps an in-memory payload as a File.
func FileFromBytes(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
	}
}

// part is one named section of a multipart body, fully resolved: file
// parts carry their bound storage key as name, the ACL and index parts
// their fixed names.
type part struct {
	name        string
	filename    string
	contentType string
	size        int64
	content     io.Reader
}

// partList accumulates body parts while binding file parts, in call
// order, to pre-allocated storage keys in allocation order.
type partList struct {
	parts []part
	keys  []api.Resource
	next  int
}

func newPartList(keys []api.Resource) *partList {
	return &partList{keys: keys}
}

// addFile binds f to the next unused storage key and returns the bound
// resource. Binding past the last pre-allocated key fails.
func (l *partList) addFile(f File) (api.Resource, error) {
	if l.next >= len(l.keys) {
		return api.Resource{}, fmt.Errorf("%w: %d keys allocated, file %q does not fit", ErrNoKeyAvailable, len(l.keys), f.Name)
	}
	bound := l.keys[l.next]
	l.next++
	filename := f.Name
	if filename == "" {
		filename = bound.StorageKey
	}
	l.parts = append(l.parts, part{
		name:        bound.StorageKey,
		filename:    filename,
		contentType: orOctetStream(f.ContentType),
		size:        f.Size,
		content:     f.Content,
	})
	return bound, nil
}

// addACL appends the serialized policy document under its fixed name.
func (l *partList) addACL(doc []byte) {
	l.parts = append(l.parts, part{
		name:        api.AclFilename,
		filename:    api.AclFilename,
		contentType: "application/json",
		size:        int64(len(doc)),
		content:     bytes.NewReader(doc),
	})
}

// addIndex appends a folder manifest part. The file's declared name must
// be exactly IndexFilename.
func (l *partList) addIndex(f File) error {
	if f.Name != IndexFilename {
		return fmt.Errorf("grove: index file must be named %q, got %q", IndexFilename, f.Name)
	}
	l.parts = append(l.parts, part{
		name:        IndexFilename,
		filename:    IndexFilename,
		contentType: orOctetStream(f.ContentType),
		size:        f.Size,
		content:     f.Content,
	})
	return nil
}

func orOctetStream(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

// encodedBody is the output of a body encoder: a transport body, its
// Content-Type (carrying the boundary), and the declared length.
type encodedBody struct {
	content       io.Reader
	contentType   string
	contentLength int64
}

// encodeBody picks the streaming encoding when the runtime probe reports
// end-to-end streaming support, the buffered fallback otherwise.
func (c *Client) encodeBody(ctx context.Context, parts []part) (*encodedBody, error) {
	if c.forceBuffered || !c.probe.streamingSupported(c.httpClient) {
		c.logDebugCtx(ctx, "client.multipart.encode", "mode", "buffered", "parts", len(parts))
		return encodeBuffered(parts)
	}
	c.logDebugCtx(ctx, "client.multipart.encode", "mode", "streaming", "parts", len(parts))
	return encodeStreaming(parts), nil
}

// encodeStreaming frames parts incrementally over a pipe. The declared
// content length is computed ahead of transmission and exactly equals the
// streamed byte count; a part whose content does not match its declared
// size aborts the stream.
func encodeStreaming(parts []part) *encodedBody {
	boundary := multipart.NewWriter(io.Discard).Boundary()
	headers := make([][]byte, len(parts))
	var total int64
	for i, p := range parts {
		headers[i] = streamPartHeader(boundary, p)
		total += int64(len(headers[i])) + p.size + 2
	}
	closing := []byte("--" + boundary + "--\r\n")
	total += int64(len(closing))

	pr, pw := io.Pipe()
	go func() {
		for i, p := range parts {
			if _, err := pw.Write(headers[i]); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
			n, err := io.Copy(pw, p.content)
			if err != nil {
				_ = pw.CloseWithError(err)
				return
			}
			if n != p.size {
				_ = pw.CloseWithError(fmt.Errorf("grove: part %q declared %d bytes, content had %d", p.name, p.size, n))
				return
			}
			if _, err := pw.Write([]byte("\r\n")); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		if _, err := pw.Write(closing); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()
	return &encodedBody{
		content:       pr,
		contentType:   "multipart/form-data; boundary=" + boundary,
		contentLength: total,
	}
}

func streamPartHeader(boundary string, p part) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Disposition: form-data; name=%q; filename=%q\r\n", p.name, p.filename)
	fmt.Fprintf(&b, "Content-Type: %s\r\n\r\n", p.contentType)
	return b.Bytes()
}

// encodeBuffered materializes the whole body in memory using the stdlib
// multipart writer, which owns the exact framing.
func encodeBuffered(parts []part) (*encodedBody, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.name, p.filename))
		header.Set("Content-Type", p.contentType)
		dst, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(dst, p.content); err != nil {
			return nil, fmt.Errorf("grove: buffering part %q: %w", p.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &encodedBody{
		content:       bytes.NewReader(buf.Bytes()),
		contentType:   writer.FormDataContentType(),
		contentLength: int64(buf.Len()),
	}, nil
}
