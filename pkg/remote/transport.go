// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remote

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📡 Response is what a transport reports once a transfer is over.
type Response struct {
	// StatusCode is the protocol status of the response.
	StatusCode int
	// Location is the path of a file holding the body. Empty when no body was
	// stored.
	Location string
}

// 🔌 Transport performs a single transfer for a URI. It must return once the
// transfer is over, including when ctx is cancelled; a cancellation surfaces
// as an error wrapping context.Canceled.
type Transport interface {
	Fetch(ctx context.Context, uri string) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, uri string) (*Response, error)

func (f TransportFunc) Fetch(ctx context.Context, uri string) (*Response, error) {
	return f(ctx, uri)
}

// 🌐 HTTPTransport downloads a URI with a single GET and stores a successful
// body in a temp file.
type HTTPTransport struct {
	client    *http.Client
	dir       string
	userAgent string
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithClient replaces http.DefaultClient.
func WithClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithDownloadDir stores bodies under dir instead of the system temp dir.
func WithDownloadDir(dir string) HTTPOption {
	return func(t *HTTPTransport) { t.dir = dir }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) HTTPOption {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

// 🏭 NewHTTPTransport creates an HTTP transport.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{client: http.DefaultClient}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Fetch(ctx context.Context, uri string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	zerolog.Ctx(ctx).Debug().Str("uri", uri).Int("status", resp.StatusCode).Msg("response received")

	if resp.StatusCode != http.StatusOK {
		return &Response{StatusCode: resp.StatusCode}, nil
	}

	f, err := os.CreateTemp(t.dir, "catlens-*")
	if err != nil {
		return nil, errors.Errorf("creating body file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Errorf("reading body: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Errorf("closing body file: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Location: f.Name()}, nil
}
