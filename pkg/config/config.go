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

// Package config loads catlens settings from .catlens.yaml, .catlens.hcl or
// .catlens.json.
package config

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultEndpoint    = "https://api.thecatapi.com/v1/images/search"
	DefaultWorkers     = 5
	DefaultPreviewSize = 128
	DefaultLibraryDir  = "./cats"
	DefaultUserAgent   = "catlens"
)

// 📋 Config is the catlens configuration.
type Config struct {
	// Endpoint is the metadata URL that resolves to the next cat image.
	Endpoint string `json:"endpoint" yaml:"endpoint" hcl:"endpoint,optional" validate:"required,url"`
	// Workers bounds the filter worker pool.
	Workers int `json:"workers" yaml:"workers" hcl:"workers,optional" validate:"min=1,max=64"`
	// PreviewSize is the edge of the box preview thumbnails fit into.
	PreviewSize int `json:"preview_size" yaml:"preview_size" hcl:"preview_size,optional" validate:"min=8,max=2048"`
	// LibraryDir is where saved images go.
	LibraryDir string `json:"library_dir" yaml:"library_dir" hcl:"library_dir,optional" validate:"required"`
	// DownloadDir holds in-flight response bodies. Empty means the system temp dir.
	DownloadDir string `json:"download_dir" yaml:"download_dir" hcl:"download_dir,optional"`
	UserAgent   string `json:"user_agent" yaml:"user_agent" hcl:"user_agent,optional"`

	location string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Location is the file the configuration was read from, empty for defaults.
func (c *Config) Location() string { return c.location }

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.PreviewSize == 0 {
		c.PreviewSize = DefaultPreviewSize
	}
	if c.LibraryDir == "" {
		c.LibraryDir = DefaultLibraryDir
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

var validate = newValidator()

// newValidator reports fields by their file key rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ✅ Validate checks every field constraint.
func Validate(ctx context.Context, cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Errorf("validating config: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		zerolog.Ctx(ctx).Debug().Str("field", fe.Field()).Str("tag", fe.Tag()).Msg("invalid config field")
		problems = append(problems, describe(fe))
	}
	return errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be a URL"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}
