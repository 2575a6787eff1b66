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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func TestRootCmd(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		args    []string
		want    string
		wantErr string
	}{
		{
			name:   "filters_with_config",
			config: "workers: 3\n",
			args:   []string{"filters", "--only", "mono"},
			want:   "mono",
		},
		{
			name:    "invalid_config",
			config:  "workers: -1\n",
			args:    []string{"filters"},
			wantErr: "loading config",
		},
		{
			name: "version_debug",
			args: []string{"version", "--debug"},
			want: "catlens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.config != "" {
				path := filepath.Join(t.TempDir(), "catlens.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))
				args = append([]string{"--config", path}, args...)
			}

			var out bytes.Buffer
			cmd := newRootCmd(io.Discard)
			cmd.SetOut(&out)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(args)

			err := cmd.ExecuteContext(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
