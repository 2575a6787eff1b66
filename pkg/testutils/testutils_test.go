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
package testutils

import (
	"bytes"
	"image/png"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err, "requesting %s", url)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading body")
	return resp.StatusCode, body
}

func TestCatPNG(t *testing.T) {
	cfg, err := png.DecodeConfig(bytes.NewReader(CatPNG(t, 12, 7)))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 7, cfg.Height)
}

func TestCatServer(t *testing.T) {
	payload := CatPNG(t, 4, 4)
	srv := NewCatServer(t, payload)

	status, body := get(t, srv.MetaURL())
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), srv.CatURI(), "listing should name the image")

	status, body = get(t, srv.CatURI())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, payload, body)

	status, _ = get(t, srv.URL+"/dog.png")
	assert.Equal(t, http.StatusNotFound, status)

	srv.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}, nil)
	status, _ = get(t, srv.MetaURL())
	assert.Equal(t, http.StatusTeapot, status)
	status, _ = get(t, srv.CatURI())
	assert.Equal(t, http.StatusOK, status, "image route keeps its default")

	srv.Handle(nil, nil)
	status, _ = get(t, srv.MetaURL())
	assert.Equal(t, http.StatusOK, status)
}

func TestContext(t *testing.T) {
	ctx := Context(t)
	assert.NotEqual(t, zerolog.Disabled, zerolog.Ctx(ctx).GetLevel())
	zerolog.Ctx(ctx).Info().Msg("context logger reaches the test log")
}
