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
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

func init() {
	Register(NewFilter("mono", grayscale))
	Register(NewFilter("sepia", sepia))
	Register(NewFilter("invert", invert))
	Register(NewFilter("chrome", saturation(0.3), contrast(0.15)))
	Register(NewFilter("transfer", hue(-12), saturation(0.1), gamma(1.1)))
	Register(NewFilter("process", hue(20), contrast(0.2), saturation(-0.2)))
	Register(NewFilter("noir", grayscale, contrast(0.35), brightness(-0.05)))
	Register(NewFilter("instant", saturation(-0.15), brightness(0.08), gamma(1.2)))
	Register(NewFilter("fade", contrast(-0.25), brightness(0.1), softBlur))
}

func grayscale(img image.Image) image.Image { return effect.Grayscale(img) }

func sepia(img image.Image) image.Image { return effect.Sepia(img) }

func invert(img image.Image) image.Image { return effect.Invert(img) }

func softBlur(img image.Image) image.Image { return blur.Gaussian(img, 0.8) }

func contrast(change float64) Transform {
	return func(img image.Image) image.Image { return adjust.Contrast(img, change) }
}

func saturation(change float64) Transform {
	return func(img image.Image) image.Image { return adjust.Saturation(img, change) }
}

func brightness(change float64) Transform {
	return func(img image.Image) image.Image { return adjust.Brightness(img, change) }
}

func hue(change int) Transform {
	return func(img image.Image) image.Image { return adjust.Hue(img, change) }
}

func gamma(g float64) Transform {
	return func(img image.Image) image.Image { return adjust.Gamma(img, g) }
}
