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

// Package commands holds the catlens subcommands.
package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/cmd/catlens/presenter"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/log"
	"github.com/walteh/catlens/pkg/mainloop"
	"github.com/walteh/catlens/pkg/media"
	"github.com/walteh/catlens/pkg/observable"
	"github.com/walteh/catlens/pkg/provider"
	"github.com/walteh/catlens/pkg/remote"
	"github.com/walteh/catlens/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// ErrInterrupted is returned when the user stopped a command.
var ErrInterrupted = errors.New("interrupted")

// 🧩 app wires one command invocation: a main loop, a loader and the
// presenter following it.
type app struct {
	opts      *opts.RootOpts
	loop      *mainloop.Loop
	loader    *session.Loader
	presenter *presenter.Presenter
	logger    *log.Logger

	// main loop only
	editor      *session.Editor
	interrupted bool
}

func newApp(ctx context.Context, o *opts.RootOpts, filters *catalog.Catalog) (*app, error) {
	cfg := o.Config
	loop := mainloop.New()

	transportOpts := []remote.HTTPOption{remote.WithUserAgent(cfg.UserAgent)}
	if cfg.DownloadDir != "" {
		if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
			return nil, errors.Errorf("creating download dir: %w", err)
		}
		transportOpts = append(transportOpts, remote.WithDownloadDir(cfg.DownloadDir))
	}
	client := remote.NewClient(remote.NewHTTPTransport(transportOpts...), loop)

	loader := session.NewLoader(provider.New(cfg.Endpoint, client), session.EditorOptions{
		Executor:    loop,
		Catalog:     filters,
		Library:     media.NewDirLibrary(cfg.LibraryDir),
		Workers:     cfg.Workers,
		PreviewSize: cfg.PreviewSize,
	})

	return &app{
		opts:      o,
		loop:      loop,
		loader:    loader,
		presenter: presenter.New(ctx),
		logger:    o.Logger,
	}, nil
}

// run executes start on the main loop and serves the loop until finish is
// called. An interrupt cancels whatever is in flight instead of tearing the
// loop down, so every outcome is still reported.
func (a *app) run(ctx context.Context, start func(ctx context.Context, finish func(error))) error {
	loopCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	interrupt, stopSignals := signal.NotifyContext(ctx, os.Interrupt)
	defer stopSignals()

	go func() {
		select {
		case <-interrupt.Done():
			zerolog.Ctx(ctx).Debug().Msg("interrupt received, cancelling")
			a.loop.Dispatch(a.cancel)
		case <-loopCtx.Done():
		}
	}()

	var result error
	finished := false
	finish := func(err error) {
		if finished {
			return
		}
		finished = true
		if a.interrupted {
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("failure after interrupt")
			}
			// whatever was in flight was cancelled by the interrupt
			err = ErrInterrupted
		}
		result = err
		a.presenter.Close()
		stop()
	}

	a.loop.Dispatch(func() {
		a.presenter.BindLoader(a.loader)
		start(loopCtx, finish)
	})

	if err := a.loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Errorf("running main loop: %w", err)
	}
	return result
}

func (a *app) cancel() {
	a.interrupted = true
	a.loader.CancelCurrent()
	if a.editor != nil {
		a.editor.Cancel()
	}
}

// loadCat loads the next cat and hands its editor to then.
func (a *app) loadCat(ctx context.Context, finish func(error), then func(*session.Editor)) {
	var sub observable.Disposable
	seen := false

	sub = a.loader.IsLoading.Subscribe(func(loading bool) {
		if loading {
			seen = true
			return
		}
		if !seen {
			return
		}
		sub.Dispose()

		if err := a.loader.Err(); err != nil {
			a.presenter.LoadFailed(err)
			finish(errors.Errorf("loading cat: %w", err))
			return
		}

		asset := a.loader.Asset()
		payload, _ := asset.Payload()
		a.logger.StartCat(ctx, log.CatEntry{URI: asset.SourceURI, Bytes: len(payload)})

		a.editor = a.loader.Editor()
		a.presenter.BindEditor(a.editor)
		a.editor.OnDismiss = func() { finish(nil) }
		then(a.editor)
	})

	if err := a.loader.LoadNext(ctx); err != nil {
		sub.Dispose()
		finish(errors.Errorf("starting load: %w", err))
	}
}

// store saves the editor image either to output or to the media library.
func (a *app) store(ctx context.Context, e *session.Editor, output string, finish func(error)) {
	if output == "" {
		e.OnSaved = func(path string) {
			a.presenter.LogValidation(true, "saved "+path, nil)
		}
		onMessage := e.OnMessage
		e.OnMessage = func(title, message string, then func()) {
			onMessage(title, message, then)
			if then == nil {
				finish(errors.New(message))
			}
		}
		e.Save(ctx)
		return
	}

	img := e.Image.Get()
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		finish(errors.Errorf("creating output dir: %w", err))
		return
	}
	if err := os.WriteFile(output, img, 0o644); err != nil {
		finish(errors.Errorf("writing %s: %w", output, err))
		return
	}
	a.presenter.LogValidation(true, "saved "+output, nil)
	finish(nil)
}
