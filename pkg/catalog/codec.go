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
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"gitlab.com/tozd/go/errors"
)

// Decode reads any format imaging understands (jpeg, png, gif, bmp, tiff),
// honouring EXIF orientation.
func Decode(payload []byte) (image.Image, error) {
	if len(payload) == 0 {
		return nil, errors.New("empty image payload")
	}
	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imgio.PNGEncoder()(w, img); err != nil {
		return errors.Errorf("encoding png: %w", err)
	}
	return nil
}

// Thumbnail scales payload to fit in a size x size box and returns PNG bytes.
func Thumbnail(payload []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid thumbnail size %d", size)
	}
	img, err := Decode(payload)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, thumb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
