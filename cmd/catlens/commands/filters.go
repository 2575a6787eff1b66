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
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/catlens/pkg/catalog"
	"gitlab.com/tozd/go/errors"
)

// NewFiltersCmd creates the filters command
func NewFiltersCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := catalog.Default().Select(only)
			if err != nil {
				return errors.Errorf("selecting filters: %w", err)
			}

			data := pterm.TableData{{"#", "Filter"}}
			for i, name := range filters.Names() {
				data = append(data, []string{strconv.Itoa(i), name})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering filter table: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}

	cmd.Flags().StringVar(&only, "only", "*", "glob selecting which filters to list")

	return cmd
}
