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

package session

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/mainloop"
	"github.com/walteh/catlens/pkg/media"
	"github.com/walteh/catlens/pkg/observable"
	"github.com/walteh/catlens/pkg/pipeline"
	"github.com/walteh/catlens/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// AppName titles every message an editor shows.
const AppName = "catlens"

// Messages reported through OnMessage.
const (
	MessageSaved            = "The image was saved successfully"
	MessageSaveFailed       = "Failed to save the image"
	MessageAccessDenied     = "Access to the photos library is denied"
	MessageAccessRestricted = "Access to the photos library is restricted"
)

const defaultPreviewSize = 128

// EditorOptions are the collaborators shared by every editor.
type EditorOptions struct {
	Executor    mainloop.Executor
	Catalog     *catalog.Catalog
	Library     media.Library
	Workers     int
	PreviewSize int
}

// ✏️ Editor applies filters to one loaded cat and saves the result.
type Editor struct {
	Image *observable.Cell[[]byte]

	OnPreview func(index int)
	OnMessage func(title, message string, then func())
	OnDismiss func()
	OnSaved   func(path string)

	asset    *remote.Asset
	opts     EditorOptions
	pipeline *pipeline.Pipeline
	previews [][]byte
}

// 🏭 NewEditor creates an editor for asset.
func NewEditor(asset *remote.Asset, opts EditorOptions) *Editor {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = defaultPreviewSize
	}

	payload, _ := asset.Payload()
	return &Editor{
		Image:    observable.NewCell(payload),
		asset:    asset,
		opts:     opts,
		pipeline: pipeline.New(opts.Executor, opts.Workers),
		previews: make([][]byte, opts.Catalog.Len()),
	}
}

// IsProcessing reports whether an applied filter is in progress.
func (e *Editor) IsProcessing() *observable.Cell[bool] {
	return e.pipeline.Processing()
}

// Filters is the catalog the editor indexes into.
func (e *Editor) Filters() *catalog.Catalog {
	return e.opts.Catalog
}

// ApplyFilter runs the filter at index over the original image, replacing any
// filter still in progress. Image is updated when it completes. It returns nil
// when there is no image or the index is out of range.
func (e *Editor) ApplyFilter(ctx context.Context, index int) *pipeline.Job {
	payload, ok := e.asset.Payload()
	if !ok || index < 0 || index >= e.opts.Catalog.Len() {
		return nil
	}

	return e.pipeline.Apply(ctx, e.opts.Catalog.At(index), payload, func(out []byte) {
		e.Image.Set(out)
	})
}

// CreatePreviews renders a thumbnail of the image through every filter.
// Preview(i) holds the plain thumbnail until filter i finishes, at which
// point OnPreview(i) is called.
func (e *Editor) CreatePreviews(ctx context.Context) ([]*pipeline.Job, error) {
	payload, ok := e.asset.Payload()
	if !ok {
		return nil, errors.New("no image to preview")
	}

	thumb, err := catalog.Thumbnail(payload, e.opts.PreviewSize)
	if err != nil {
		return nil, errors.Errorf("creating thumbnail: %w", err)
	}
	for i := range e.previews {
		e.previews[i] = thumb
	}

	return e.pipeline.PrecomputeAll(ctx, e.opts.Catalog, thumb, func(index int, out []byte) {
		e.previews[index] = out
		if e.OnPreview != nil {
			e.OnPreview(index)
		}
	}), nil
}

// Preview returns the current preview for filter index.
func (e *Editor) Preview(index int) []byte {
	if index < 0 || index >= len(e.previews) {
		return nil
	}
	return e.previews[index]
}

// Save writes the current image to the media library off the main executor
// and reports the outcome through OnMessage. Success is followed by
// OnDismiss once the message is acknowledged.
func (e *Editor) Save(ctx context.Context) {
	img := e.Image.Get()
	if img == nil {
		return
	}

	go func() {
		path, err := media.SaveAuthorized(ctx, e.opts.Library, img)
		e.opts.Executor.Dispatch(func() { e.reportSave(ctx, path, err) })
	}()
}

func (e *Editor) reportSave(ctx context.Context, path string, err error) {
	logger := zerolog.Ctx(ctx)

	switch {
	case err == nil:
		logger.Debug().Str("path", path).Msg("image saved")
		if e.OnSaved != nil {
			e.OnSaved(path)
		}
		e.message(MessageSaved, e.dismiss)
	case errors.Is(err, media.ErrAccessDenied):
		e.message(MessageAccessDenied, nil)
	case errors.Is(err, media.ErrAccessRestricted):
		e.message(MessageAccessRestricted, nil)
	default:
		logger.Warn().Err(err).Msg("saving image failed")
		e.message(MessageSaveFailed, nil)
	}
}

func (e *Editor) message(text string, then func()) {
	if e.OnMessage != nil {
		e.OnMessage(AppName, text, then)
	}
}

func (e *Editor) dismiss() {
	if e.OnDismiss != nil {
		e.OnDismiss()
	}
}

// Cancel stops every filter job and dismisses the editor.
func (e *Editor) Cancel() {
	e.pipeline.CancelAll()
	e.dismiss()
}

// Wait blocks until no filter job is running. It must not be called on the
// main executor.
func (e *Editor) Wait() {
	e.pipeline.Wait()
}
