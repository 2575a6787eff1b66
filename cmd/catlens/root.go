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
package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/catlens/cmd/catlens/commands"
	"github.com/walteh/catlens/cmd/catlens/opts"
	"github.com/walteh/catlens/pkg/config"
	"github.com/walteh/catlens/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree. Console output goes to console.
func newRootCmd(console io.Writer) *cobra.Command {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "catlens",
		Short: "Fetch random cats and run them through photo filters",
		Long: `catlens fetches a random cat from a metadata endpoint, downloads it and
lets you apply photo filters, render previews and save the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupRootOpts(cmd, o, console)
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewFetchCmd(o),
		commands.NewFilterCmd(o),
		commands.NewPreviewsCmd(o),
		commands.NewFiltersCmd(),
		commands.NewVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: search .catlens.{yaml,yml,hcl,json})")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupRootOpts loads the config and puts the logger in the command context
func setupRootOpts(cmd *cobra.Command, o *opts.RootOpts, console io.Writer) error {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	o.Logger = log.New(console, level)
	ctx := log.NewContext(cmd.Context(), o.Logger)

	cfg, err := config.Load(ctx, ".", o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg

	if loc := cfg.Location(); loc != "" {
		zerolog.Ctx(ctx).Debug().Str("path", loc).Msg("config loaded")
	}

	cmd.SetContext(ctx)
	return nil
}
