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
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/log"
	"github.com/walteh/catlens/pkg/pipeline"
	"github.com/walteh/catlens/pkg/session"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// NewPreviewsCmd creates the previews command
func NewPreviewsCmd(o *opts.RootOpts) *cobra.Command {
	var (
		only string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "previews",
		Short: "Render a thumbnail of a cat through every filter",
		Long: `Previews fetches a cat, renders a thumbnail through each filter and
writes one PNG per filter to --out. Use --only to pick filters by glob.`,
		Example: `  catlens previews --out ./previews
  catlens previews --only "*o*" --out ./previews`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "previews").Logger().WithContext(cmd.Context())

			filters, err := catalog.Default().Select(only)
			if err != nil {
				return errors.Errorf("selecting filters: %w", err)
			}

			a, err := newApp(ctx, o, filters)
			if err != nil {
				return err
			}

			o.Logger.Header("rendering previews")
			return a.run(ctx, func(ctx context.Context, finish func(error)) {
				a.loadCat(ctx, finish, func(e *session.Editor) {
					a.renderPreviews(ctx, e, out, finish)
				})
			})
		},
	}

	cmd.Flags().StringVar(&only, "only", "*", "glob selecting which filters to render")
	cmd.Flags().StringVar(&out, "out", "previews", "directory the previews are written to")

	return cmd
}

type previewFile struct {
	name   string
	state  pipeline.State
	output []byte
}

// renderPreviews precomputes every preview, then writes the finished ones to
// dir once the pipeline is idle.
func (a *app) renderPreviews(ctx context.Context, e *session.Editor, dir string, finish func(error)) {
	started := time.Now()

	jobs, err := e.CreatePreviews(ctx)
	if err != nil {
		finish(err)
		return
	}

	go func() {
		e.Wait()
		// every delivery was dispatched before Wait returned
		a.loop.Dispatch(func() {
			files := make([]previewFile, len(jobs))
			for i, j := range jobs {
				files[i] = previewFile{name: e.Filters().Name(i), state: j.State(), output: e.Preview(i)}
			}
			go func() {
				err := a.writePreviews(ctx, dir, files, time.Since(started))
				a.loop.Dispatch(func() {
					a.logger.EndCat(ctx)
					finish(err)
				})
			}()
		})
	}()
}

func (a *app) writePreviews(ctx context.Context, dir string, files []previewFile, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating preview dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Config.Workers)

	for _, f := range files {
		entry := log.JobEntry{Filter: f.name, State: f.state.String(), Bytes: len(f.output), Duration: elapsed}
		if f.state != pipeline.Completed {
			a.logger.LogJob(ctx, entry)
			continue
		}

		g.Go(func() error {
			entry.Path = filepath.Join(dir, f.name+".png")
			err := os.WriteFile(entry.Path, f.output, 0o644)
			if err != nil {
				err = errors.Errorf("writing %s preview: %w", f.name, err)
			}
			a.presenter.LogPreview(f.name, entry.Path, err)
			a.logger.LogJob(ctx, entry)
			return err
		})
	}

	return g.Wait()
}
