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
package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/catlens/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

func TestLoadFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "cancelled", err: &remote.Error{Kind: remote.Cancelled}, want: "loading was cancelled"},
		{name: "network", err: &remote.Error{Kind: remote.NetworkError, Err: errors.New("dial")}, want: "the cat service could not be reached"},
		{name: "server_wrapped", err: errors.Errorf("loading cat: %w", &remote.Error{Kind: remote.ServerError}), want: "the cat service rejected the request"},
		{name: "format", err: &remote.Error{Kind: remote.FormatError, Err: errors.New("no uri")}, want: "the cat service sent an unusable response"},
		{name: "unknown", err: &remote.Error{Kind: remote.UnknownError}, want: "loading failed for an unknown reason"},
		{name: "plain", err: errors.New("boom"), want: "loading failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loadFailure(tt.err))
		})
	}
}
