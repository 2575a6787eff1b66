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

// Package media is the device media store that finished images are saved to.
package media

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// AuthorizationStatus is the permission state of a media library.
type AuthorizationStatus int

const (
	NotDetermined AuthorizationStatus = iota
	Authorized
	Denied
	Restricted
)

func (s AuthorizationStatus) String() string {
	switch s {
	case NotDetermined:
		return "not_determined"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case Restricted:
		return "restricted"
	default:
		return "unknown"
	}
}

var (
	ErrAccessDenied     = errors.New("access to the media library is denied")
	ErrAccessRestricted = errors.New("access to the media library is restricted")
)

// 🖼️ Library stores images on behalf of the user.
type Library interface {
	Status(ctx context.Context) (AuthorizationStatus, error)
	RequestAuthorization(ctx context.Context) (AuthorizationStatus, error)
	Save(ctx context.Context, payload []byte) (string, error)
}

// EnsureAccess checks that lib may be written to, asking for permission once
// when it has not been decided yet.
func EnsureAccess(ctx context.Context, lib Library) error {
	status, err := lib.Status(ctx)
	if err != nil {
		return errors.Errorf("checking library status: %w", err)
	}

	if status == NotDetermined {
		zerolog.Ctx(ctx).Debug().Msg("requesting media library authorization")
		if _, err := lib.RequestAuthorization(ctx); err != nil {
			return errors.Errorf("requesting library authorization: %w", err)
		}
		if status, err = lib.Status(ctx); err != nil {
			return errors.Errorf("rechecking library status: %w", err)
		}
	}

	switch status {
	case Authorized:
		return nil
	case Restricted:
		return ErrAccessRestricted
	default:
		// still undetermined after asking counts as a refusal
		return ErrAccessDenied
	}
}

// SaveAuthorized runs EnsureAccess and then saves payload.
func SaveAuthorized(ctx context.Context, lib Library, payload []byte) (string, error) {
	if err := EnsureAccess(ctx, lib); err != nil {
		return "", err
	}
	path, err := lib.Save(ctx, payload)
	if err != nil {
		return "", errors.Errorf("saving image: %w", err)
	}
	return path, nil
}
