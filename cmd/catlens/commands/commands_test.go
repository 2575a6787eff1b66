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
package commands

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/config"
	"github.com/walteh/catlens/pkg/log"
	"github.com/walteh/catlens/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

type env struct {
	srv     *testutils.CatServer
	opts    *opts.RootOpts
	payload []byte
	libDir  string
	ctx     context.Context
}

func newEnv(t *testing.T, metaStatus int) *env {
	t.Helper()
	e := &env{payload: testutils.CatPNG(t, 32, 24), libDir: filepath.Join(t.TempDir(), "library")}

	srv := testutils.NewCatServer(t, e.payload)
	e.srv = srv
	if metaStatus != http.StatusOK {
		srv.Handle(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(metaStatus) }, nil)
	}

	cfg := config.Default()
	cfg.Endpoint = srv.MetaURL()
	cfg.LibraryDir = e.libDir
	cfg.Workers = 2

	logger := log.New(io.Discard, zerolog.Disabled)
	e.opts = &opts.RootOpts{Config: cfg, Logger: logger}
	e.ctx = log.NewContext(context.Background(), logger)
	return e
}

func (e *env) execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(e.ctx)
	return out.String(), err
}

func TestFetchCmd(t *testing.T) {
	t.Run("library", func(t *testing.T) {
		e := newEnv(t, http.StatusOK)

		_, err := e.execute(t, NewFetchCmd(e.opts))
		require.NoError(t, err)

		saved, err := filepath.Glob(filepath.Join(e.libDir, "*.png"))
		require.NoError(t, err)
		require.Len(t, saved, 1, "one image should be saved to the library")

		got, err := os.ReadFile(saved[0])
		require.NoError(t, err)
		assert.Equal(t, e.payload, got)
	})

	t.Run("output", func(t *testing.T) {
		e := newEnv(t, http.StatusOK)
		output := filepath.Join(t.TempDir(), "nested", "cat.png")

		_, err := e.execute(t, NewFetchCmd(e.opts), "--output", output)
		require.NoError(t, err)

		got, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, e.payload, got)
		assert.NoDirExists(t, e.libDir, "library should be untouched")
	})

	t.Run("metadata_error", func(t *testing.T) {
		e := newEnv(t, http.StatusInternalServerError)

		_, err := e.execute(t, NewFetchCmd(e.opts))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading cat")
	})
}

func TestFetchCmdInterrupted(t *testing.T) {
	e := newEnv(t, http.StatusOK)

	requested := make(chan struct{})
	e.srv.Handle(nil, func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-r.Context().Done()
	})

	go func() {
		<-requested
		self, err := os.FindProcess(os.Getpid())
		if assert.NoError(t, err) {
			assert.NoError(t, self.Signal(os.Interrupt))
		}
	}()

	_, err := e.execute(t, NewFetchCmd(e.opts))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)

	assert.NoDirExists(t, e.libDir, "nothing should be saved")
}

func TestRunAfterInterrupt(t *testing.T) {
	e := newEnv(t, http.StatusOK)

	a, err := newApp(e.ctx, e.opts, catalog.Default())
	require.NoError(t, err)

	err = a.run(e.ctx, func(ctx context.Context, finish func(error)) {
		a.cancel()
		finish(errors.New("filter invert produced no image"))
	})
	assert.ErrorIs(t, err, ErrInterrupted, "a failure caused by the interrupt reports the interrupt")
}

func TestFilterCmd(t *testing.T) {
	t.Run("invert", func(t *testing.T) {
		e := newEnv(t, http.StatusOK)
		output := filepath.Join(t.TempDir(), "inverted.png")

		_, err := e.execute(t, NewFilterCmd(e.opts), "invert", "--output", output)
		require.NoError(t, err)

		got, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.NotEqual(t, e.payload, got, "filtered image should differ")

		img, err := png.Decode(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())
	})

	t.Run("unknown", func(t *testing.T) {
		e := newEnv(t, http.StatusOK)

		_, err := e.execute(t, NewFilterCmd(e.opts), "sparkle")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown filter "sparkle"`)
	})
}

func TestPreviewsCmd(t *testing.T) {
	e := newEnv(t, http.StatusOK)
	out := filepath.Join(t.TempDir(), "previews")

	_, err := e.execute(t, NewPreviewsCmd(e.opts), "--only", "*o*", "--out", out)
	require.NoError(t, err)

	written, err := filepath.Glob(filepath.Join(out, "*.png"))
	require.NoError(t, err)

	names := make([]string, 0, len(written))
	for _, w := range written {
		names = append(names, filepath.Base(w))
	}
	assert.ElementsMatch(t, []string{"mono.png", "chrome.png", "process.png", "noir.png"}, names)

	for _, w := range written {
		data, err := os.ReadFile(w)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.LessOrEqual(t, cfg.Width, config.DefaultPreviewSize)
	}
}

func TestPreviewsCmdBadGlob(t *testing.T) {
	e := newEnv(t, http.StatusOK)

	_, err := e.execute(t, NewPreviewsCmd(e.opts), "--only", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selecting filters")
}

func TestFiltersCmd(t *testing.T) {
	e := newEnv(t, http.StatusOK)

	out, err := e.execute(t, NewFiltersCmd(), "--only", "f*")
	require.NoError(t, err)
	assert.Contains(t, out, "fade")
	assert.NotContains(t, out, "mono")
}

func TestVersionCmd(t *testing.T) {
	e := newEnv(t, http.StatusOK)

	out, err := e.execute(t, NewVersionCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "catlens")
	assert.Contains(t, out, "Go:")
}
