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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/session"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd(o *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a random cat",
		Long: `Fetch resolves the next cat from the configured endpoint, downloads it
and saves it to the library directory, or to --output when given.

Ctrl-C cancels the download in flight.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "fetch").Logger().WithContext(cmd.Context())

			a, err := newApp(ctx, o, catalog.Default())
			if err != nil {
				return err
			}

			o.Logger.Header("fetching a cat")
			return a.run(ctx, func(ctx context.Context, finish func(error)) {
				a.loadCat(ctx, finish, func(e *session.Editor) {
					a.store(ctx, e, output, finish)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the image to this file instead of the library")

	return cmd
}
