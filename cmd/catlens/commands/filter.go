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
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/log"
	"github.com/walteh/catlens/pkg/observable"
	"github.com/walteh/catlens/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// NewFilterCmd creates the filter command
func NewFilterCmd(o *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "filter <name>",
		Short: "Fetch a cat and apply a filter to it",
		Long: `Filter fetches a cat, runs the named filter over it and saves the
result. Run "catlens filters" for the available names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "filter").Logger().WithContext(cmd.Context())

			filters := catalog.Default()
			index, ok := filters.Index(args[0])
			if !ok {
				return errors.Errorf("unknown filter %q", args[0])
			}

			a, err := newApp(ctx, o, filters)
			if err != nil {
				return err
			}

			o.Logger.Header("applying " + args[0])
			return a.run(ctx, func(ctx context.Context, finish func(error)) {
				a.loadCat(ctx, finish, func(e *session.Editor) {
					a.applyFilter(ctx, e, index, output, finish)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the image to this file instead of the library")

	return cmd
}

// applyFilter runs one applied filter and stores the image it produced.
func (a *app) applyFilter(ctx context.Context, e *session.Editor, index int, output string, finish func(error)) {
	var bag observable.Bag
	filtered := false
	started := time.Now()
	name := e.Filters().Name(index)

	bag.Add(e.Image.Subscribe(func(img []byte) {
		if e.IsProcessing().Get() {
			filtered = true
		}
	}))

	seen := false
	bag.Add(e.IsProcessing().Subscribe(func(processing bool) {
		if processing {
			seen = true
			return
		}
		if !seen {
			return
		}
		bag.Dispose()

		entry := log.JobEntry{Filter: name, Duration: time.Since(started)}
		if !filtered {
			entry.State = "failed"
			if a.interrupted {
				entry.State = "cancelled"
			}
			a.logger.LogJob(ctx, entry)
			finish(errors.Errorf("filter %s produced no image", name))
			return
		}

		entry.State = "completed"
		entry.Bytes = len(e.Image.Get())
		entry.Path = output
		a.logger.LogJob(ctx, entry)
		a.store(ctx, e, output, finish)
	}))

	if e.ApplyFilter(ctx, index) == nil {
		bag.Dispose()
		finish(errors.Errorf("nothing to apply %s to", name))
	}
}
