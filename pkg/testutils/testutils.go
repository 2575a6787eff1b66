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
// Package testutils holds fixtures shared by the catlens tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// CatPNG renders a w by h gradient as PNG.
func CatPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "encoding fixture")
	return buf.Bytes()
}

// Context returns a context whose zerolog logger writes to the test log.
func Context(t testing.TB) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 🐱 CatServer serves a metadata listing at /meta that points at Payload,
// served at /cat.png. Either route can be overridden with Handle.
type CatServer struct {
	*httptest.Server
	Payload []byte

	mu   sync.Mutex
	meta http.HandlerFunc
	cat  http.HandlerFunc
}

// NewCatServer starts a server for payload, closed when the test ends.
func NewCatServer(t testing.TB, payload []byte) *CatServer {
	s := &CatServer{Payload: payload}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// MetaURL is the metadata endpoint.
func (s *CatServer) MetaURL() string { return s.URL + "/meta" }

// CatURI is the image URI the default metadata listing names.
func (s *CatServer) CatURI() string { return s.URL + "/cat.png" }

// Handle replaces the metadata and image handlers. A nil handler restores
// the default route.
func (s *CatServer) Handle(meta, cat http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta, s.cat = meta, cat
}

func (s *CatServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	meta, cat := s.meta, s.cat
	s.mu.Unlock()

	switch r.URL.Path {
	case "/meta":
		if meta != nil {
			meta(w, r)
			return
		}
		fmt.Fprintf(w, `[{"id":"tabby","url":%q,"width":%d}]`, s.CatURI(), len(s.Payload))
	case "/cat.png":
		if cat != nil {
			cat(w, r)
			return
		}
		_, _ = w.Write(s.Payload)
	default:
		http.NotFound(w, r)
	}
}
