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

// Package provider resolves the source URI of the next asset from a metadata
// endpoint.
package provider

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// ErrRequestInFlight is returned when RequestNew is called while a request is
// still outstanding.
var ErrRequestInFlight = errors.New("metadata request already in flight")

// 🔌 Provider issues "give me a new asset" metadata requests. At most one
// request is outstanding at a time.
type Provider struct {
	endpoint string
	client   *remote.Client

	mu      sync.Mutex
	current *remote.Download
}

// 🏭 New creates a provider for endpoint. Metadata requests and the assets it
// creates share client.
func New(endpoint string, client *remote.Client) *Provider {
	return &Provider{endpoint: endpoint, client: client}
}

// RequestNew fetches metadata for the next asset. onComplete receives either an
// asset whose payload is not fetched yet or a *remote.Error; it fires once, on
// the client's executor. Calling RequestNew while IsLoading is true returns
// ErrRequestInFlight and starts nothing.
func (p *Provider) RequestNew(ctx context.Context, onComplete func(*remote.Asset, error)) error {
	d := p.client.NewDownload()

	p.mu.Lock()
	if p.current != nil {
		p.mu.Unlock()
		return ErrRequestInFlight
	}
	p.current = d
	p.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("endpoint", p.endpoint).Msg("requesting new asset")

	d.Start(ctx, p.endpoint, func(res remote.Result) {
		p.mu.Lock()
		if p.current == d {
			p.current = nil
		}
		p.mu.Unlock()

		if res.Err != nil {
			onComplete(nil, res.Err)
			return
		}

		uri, err := DecodeURI(res.Payload)
		if err != nil {
			onComplete(nil, &remote.Error{Kind: remote.FormatError, Err: err})
			return
		}

		logger.Debug().Str("uri", uri).Msg("asset resolved")
		onComplete(remote.NewAsset(uri, p.client), nil)
	})

	return nil
}

// IsLoading reports whether a metadata request is outstanding.
func (p *Provider) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Cancel cancels the outstanding metadata request, if any. Asset downloads
// already started are not affected.
func (p *Provider) Cancel() {
	p.mu.Lock()
	d := p.current
	p.mu.Unlock()

	if d != nil {
		d.Cancel()
	}
}
