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
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 127 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func samePixels(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.RGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y))
			cb := color.RGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y))
			if ca != cb {
				return false
			}
		}
	}
	return true
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{"mono", "sepia", "invert", "chrome", "transfer", "process", "noir", "instant", "fade"}, c.Names())
	require.Equal(t, 9, c.Len())

	for i := 0; i < c.Len(); i++ {
		assert.Equal(t, c.Name(i), c.At(i).Name())
	}

	f, ok := c.Lookup("noir")
	require.True(t, ok)
	assert.Equal(t, "noir", f.Name())

	_, ok = c.Lookup("vivid")
	assert.False(t, ok)

	i, ok := c.Index("noir")
	require.True(t, ok)
	assert.Equal(t, "noir", c.Name(i))
	assert.Equal(t, 6, i)

	_, ok = c.Index("vivid")
	assert.False(t, ok)
}

func TestFiltersChangeTheImage(t *testing.T) {
	src := gradient(32, 24)
	ctx := context.Background()

	for _, name := range Default().Names() {
		t.Run(name, func(t *testing.T) {
			f, ok := Default().Lookup(name)
			require.True(t, ok)

			out, err := f.Apply(ctx, src)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds().Size(), out.Bounds().Size())
			assert.False(t, samePixels(src, out), "filter %s left the image untouched", name)
		})
	}
}

func TestFilterProcess(t *testing.T) {
	payload := pngBytes(t, gradient(16, 16))
	f, _ := Default().Lookup("invert")

	out, err := f.Process(context.Background(), payload)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	// the top-left corner is black
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestFilterProcessCancelled(t *testing.T) {
	payload := pngBytes(t, gradient(8, 8))
	f, _ := Default().Lookup("chrome")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Process(ctx, payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterProcessBadPayload(t *testing.T) {
	f, _ := Default().Lookup("mono")

	_, err := f.Process(context.Background(), []byte("definitely not an image"))
	assert.Error(t, err)

	_, err = f.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestEmptyFilter(t *testing.T) {
	_, err := NewFilter("noop").Apply(context.Background(), gradient(2, 2))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	id := func(img image.Image) image.Image { return img }

	tests := []struct {
		name    string
		filters []Filter
		wantErr bool
	}{
		{name: "empty", filters: nil},
		{name: "unique", filters: []Filter{NewFilter("a", id), NewFilter("b", id)}},
		{name: "duplicate", filters: []Filter{NewFilter("a", id), NewFilter("a", id)}, wantErr: true},
		{name: "unnamed", filters: []Filter{NewFilter("", id)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.filters...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.filters), c.Len())
		})
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
		wantErr bool
	}{
		{pattern: "*", want: Default().Names()},
		{pattern: "mono", want: []string{"mono"}},
		{pattern: "{mono,noir}", want: []string{"mono", "noir"}},
		{pattern: "*o*", want: []string{"mono", "chrome", "process", "noir"}},
		{pattern: "nothing*", want: []string{}},
		{pattern: "[", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Default().Select(tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Names())
		})
	}
}

func TestThumbnail(t *testing.T) {
	payload := pngBytes(t, gradient(400, 200))

	out, err := Thumbnail(payload, 100)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	_, err = Thumbnail(payload, 0)
	assert.Error(t, err)
}
