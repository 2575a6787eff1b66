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

// Package session binds the provider, downloads and the filter pipeline to
// observable cells a presenter can subscribe to.
//
// Every method must be called on the main executor; every cell mutation and
// callback happens there too.
package session

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/observable"
	"github.com/walteh/catlens/pkg/provider"
	"github.com/walteh/catlens/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// Labels shown in place of the title when loading fails.
const (
	TitleCancelled    = "Cancelled"
	TitleLoadingError = "LoadingError"
)

// 🐈 Loader fetches one cat at a time.
type Loader struct {
	IsLoading  *observable.Cell[bool]
	IsEditable *observable.Cell[bool]
	// Title is the source URI of the cat, an error label, or "" when there
	// is no title to show.
	Title      *observable.Cell[string]
	Image      *observable.Cell[[]byte]

	provider *provider.Provider
	editor   EditorOptions

	generation uint64
	cancelled  uint64 // generation cancelled before its image download began
	asset      *remote.Asset
	err        error
}

// 🏭 NewLoader creates a loader; editors it hands out use opts.
func NewLoader(p *provider.Provider, opts EditorOptions) *Loader {
	return &Loader{
		IsLoading:  observable.NewCell(false),
		IsEditable: observable.NewCell(false),
		Title:      observable.NewCell(""),
		Image:      observable.NewCell[[]byte](nil),
		provider:   p,
		editor:     opts,
	}
}

// LoadNext resets the session and fetches a new cat. A previous download that
// is still running is cancelled and its outcome ignored. An error is returned
// only when a metadata request is already outstanding.
func (l *Loader) LoadNext(ctx context.Context) error {
	if l.provider.IsLoading() {
		return provider.ErrRequestInFlight
	}

	if l.asset != nil {
		l.asset.Cancel()
	}

	l.generation++
	gen := l.generation
	logger := zerolog.Ctx(ctx)

	l.IsLoading.Set(true)
	observable.SetDistinct(l.IsEditable, false)
	observable.SetDistinct(l.Title, "")
	if l.Image.Get() != nil {
		l.Image.Set(nil)
	}
	l.asset = nil
	l.err = nil

	err := l.provider.RequestNew(ctx, func(asset *remote.Asset, err error) {
		if gen != l.generation {
			return
		}
		if err != nil {
			logger.Debug().Err(err).Msg("metadata request failed")
			l.fail(err)
			l.IsLoading.Set(false)
			return
		}

		if l.cancelled == gen {
			// the metadata transport had already returned when the cancel came in
			logger.Debug().Str("uri", asset.SourceURI).Msg("load cancelled before download")
			l.fail(&remote.Error{Kind: remote.Cancelled, Err: errors.New("cancelled before download")})
			l.IsLoading.Set(false)
			return
		}

		l.asset = asset
		l.Title.Set(asset.SourceURI)

		asset.Load(ctx, func(res remote.Result) {
			if gen != l.generation {
				return
			}
			if res.OK() {
				l.Image.Set(res.Payload)
			}
			l.fail(res.Err)
			l.IsLoading.Set(false)
			observable.SetDistinct(l.IsEditable, res.OK())
		})
	})
	if err != nil {
		l.IsLoading.Set(false)
		return err
	}
	return nil
}

func (l *Loader) fail(err error) {
	if err == nil {
		return
	}
	l.err = err
	if errors.Is(err, remote.ErrCancelled) {
		l.Title.Set(TitleCancelled)
		return
	}
	l.Title.Set(TitleLoadingError)
}

// CancelCurrent cancels the metadata request when one is outstanding and the
// image download otherwise.
func (l *Loader) CancelCurrent() {
	if l.provider.IsLoading() {
		l.cancelled = l.generation
		l.provider.Cancel()
		return
	}
	if l.asset != nil {
		l.asset.Cancel()
	}
}

// Err is the error of the last load, if it failed.
func (l *Loader) Err() error { return l.err }

// Asset is the cat of the last load.
func (l *Loader) Asset() *remote.Asset { return l.asset }

// Editor creates an editor for the loaded cat, or nil before a cat resolved.
func (l *Loader) Editor() *Editor {
	if l.asset == nil {
		return nil
	}
	return NewEditor(l.asset, l.editor)
}
