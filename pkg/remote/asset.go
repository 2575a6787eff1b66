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

package remote

import (
	"context"
	"sync"
	"time"
)

// 🐱 Asset is one fetched remote image: an immutable source URI and a payload
// that is set at most once.
type Asset struct {
	SourceURI string
	CreatedAt time.Time

	client *Client

	mu       sync.Mutex
	payload  []byte
	download *Download
}

// NewAsset creates an asset whose payload has not been fetched yet.
func NewAsset(uri string, client *Client) *Asset {
	return &Asset{
		SourceURI: uri,
		CreatedAt: time.Now(),
		client:    client,
	}
}

// Payload returns the downloaded bytes, if any.
func (a *Asset) Payload() ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.payload, a.payload != nil
}

// Load downloads the payload. A successful result is stored on the asset
// unless a payload is already present. onComplete fires once on the client's
// executor.
func (a *Asset) Load(ctx context.Context, onComplete func(Result)) {
	if data, ok := a.Payload(); ok {
		onComplete(Result{Payload: data})
		return
	}

	d := a.client.NewDownload()

	a.mu.Lock()
	a.download = d
	a.mu.Unlock()

	d.Start(ctx, a.SourceURI, func(res Result) {
		a.mu.Lock()
		if a.download == d {
			a.download = nil
		}
		if res.OK() && a.payload == nil {
			a.payload = res.Payload
		}
		a.mu.Unlock()

		onComplete(res)
	})
}

// Cancel cancels the in-flight download, if any.
func (a *Asset) Cancel() {
	a.mu.Lock()
	d := a.download
	a.mu.Unlock()

	if d != nil {
		d.Cancel()
	}
}
