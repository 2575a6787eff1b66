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

package observable

import "sync"

// 👜 Bag collects subscriptions so they can be released together.
type Bag struct {
	mu    sync.Mutex
	items []Disposable
}

// Add keeps d until Dispose is called.
func (b *Bag) Add(d Disposable) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

// Dispose releases every collected subscription. The bag can be reused.
func (b *Bag) Dispose() {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}
