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

package catalog

import (
	"bytes"
	"context"
	"image"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Transform is one stage of a filter.
type Transform func(image.Image) image.Image

// Filter is a named, opaque image transform made of one or more stages.
type Filter struct {
	name   string
	stages []Transform
}

// NewFilter creates a filter that runs stages in order.
func NewFilter(name string, stages ...Transform) Filter {
	return Filter{name: name, stages: stages}
}

func (f Filter) Name() string { return f.name }

// Apply runs every stage on img. ctx is checked before each stage.
func (f Filter) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if len(f.stages) == 0 {
		return nil, errors.Errorf("filter %q has no stages", f.name)
	}
	out := img
	for _, stage := range f.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = stage(out)
	}
	return out, nil
}

// Process decodes payload, applies the filter and encodes the result as PNG.
func (f Filter) Process(ctx context.Context, payload []byte) ([]byte, error) {
	img, err := Decode(payload)
	if err != nil {
		return nil, err
	}

	out, err := f.Apply(ctx, img)
	if err != nil {
		return nil, errors.Errorf("applying %s: %w", f.name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 📚 Catalog is a fixed, ordered list of filters with unique names.
type Catalog struct {
	filters []Filter
	index   map[string]int
}

// New creates a catalog from filters, in order.
func New(filters ...Filter) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(filters))}
	for _, f := range filters {
		if f.name == "" {
			return nil, errors.New("filter name is required")
		}
		if _, dup := c.index[f.name]; dup {
			return nil, errors.Errorf("duplicate filter %q", f.name)
		}
		c.index[f.name] = len(c.filters)
		c.filters = append(c.filters, f)
	}
	return c, nil
}

// Len returns the number of filters.
func (c *Catalog) Len() int { return len(c.filters) }

// Name returns the name of the filter at i.
func (c *Catalog) Name(i int) string { return c.filters[i].name }

// At returns the filter at i.
func (c *Catalog) At(i int) Filter { return c.filters[i] }

// Names returns every filter name in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.name
	}
	return names
}

// Lookup finds a filter by name.
func (c *Catalog) Lookup(name string) (Filter, bool) {
	i, ok := c.Index(name)
	if !ok {
		return Filter{}, false
	}
	return c.filters[i], true
}

// Index returns the position of the filter called name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Select returns the filters whose names match a doublestar glob, in catalog
// order.
func (c *Catalog) Select(pattern string) (*Catalog, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid filter pattern %q", pattern)
	}
	var picked []Filter
	for _, f := range c.filters {
		matched, err := doublestar.Match(pattern, f.name)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		if matched {
			picked = append(picked, f)
		}
	}
	return New(picked...)
}

var (
	registryMu sync.Mutex
	registry   []Filter
)

// 📝 Register adds f to the default catalog.
func Register(f Filter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, f)
}

// Default returns a catalog of every registered filter, in registration
// order.
func Default() *Catalog {
	registryMu.Lock()
	defer registryMu.Unlock()

	c, err := New(registry...)
	if err != nil {
		panic(err)
	}
	return c
}
