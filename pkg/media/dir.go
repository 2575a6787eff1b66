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

package media

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 DirLibrary keeps images as PNG files in a directory.
//
// The directory not existing yet means NotDetermined; asking for
// authorization creates it. A directory without the owner write bit is
// Denied, and a path that is not a directory is Restricted.
type DirLibrary struct {
	dir string
}

// NewDirLibrary creates a library rooted at dir.
func NewDirLibrary(dir string) *DirLibrary {
	return &DirLibrary{dir: filepath.Clean(dir)}
}

// Dir returns the library root.
func (l *DirLibrary) Dir() string { return l.dir }

func (l *DirLibrary) Status(ctx context.Context) (AuthorizationStatus, error) {
	info, err := os.Stat(l.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NotDetermined, nil
	case err != nil:
		return NotDetermined, errors.Errorf("stat %s: %w", l.dir, err)
	case !info.IsDir():
		return Restricted, nil
	case info.Mode().Perm()&0o200 == 0:
		return Denied, nil
	}
	return Authorized, nil
}

func (l *DirLibrary) RequestAuthorization(ctx context.Context) (AuthorizationStatus, error) {
	status, err := l.Status(ctx)
	if err != nil || status != NotDetermined {
		return status, err
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return NotDetermined, errors.Errorf("creating library dir: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", l.dir).Msg("media library created")

	return l.Status(ctx)
}

// Save writes payload as <uuid>.png through a temp file and a rename.
func (l *DirLibrary) Save(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("nothing to save")
	}

	name := uuid.NewString() + ".png"
	path := filepath.Join(l.dir, name)
	tempPath := filepath.Join(l.dir, "."+name+".tmp")

	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		return "", errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(payload)).Msg("image saved")
	return path, nil
}
