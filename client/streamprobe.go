package client

import (
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"pkt.systems/grove/internal/uuidv7"
)

// streamProbe answers, once per process, whether the HTTP stack delivers
// a request body that is produced as a live byte stream end-to-end. Some
// embedding runtimes buffer or drop streamed bodies; when the probe fails
// the client falls back to the buffered multipart encoding for the rest
// of the process. The computation is pure and deterministic for a given
// runtime, so racing first calls are harmless.
type streamProbe struct {
	once      sync.Once
	supported bool
}

// processProbe is shared by every client in the process.
var processProbe = &streamProbe{}

func (p *streamProbe) streamingSupported(httpClient *http.Client) bool {
	p.once.Do(func() {
		p.supported = probeStreaming(httpClient)
	})
	return p.supported
}

// probeStreaming runs a loopback echo round trip: a streamed (pipe-fed,
// chunked) request body carrying a random token is sent to an in-process
// echo server, and the echoed bytes must match exactly.
func probeStreaming(httpClient *http.Client) bool {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return false
	}
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(w, r.Body)
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = server.Serve(listener) }()
	defer server.Close()

	token := uuidv7.NewString()
	pr, pw := io.Pipe()
	go func() {
		_, _ = io.Copy(pw, strings.NewReader(token))
		_ = pw.Close()
	}()
	req, err := http.NewRequest(http.MethodPost, "http://"+listener.Addr().String()+"/", pr)
	if err != nil {
		return false
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	echoed, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	return string(echoed) == token
}
