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

package provider

import (
	"bytes"
	"encoding/json"
	"net/url"

	"gitlab.com/tozd/go/errors"
)

// entry covers the image listing shapes of the public cat APIs: thecatapi
// uses "url", random.cat uses "file".
type entry struct {
	URL  string `json:"url"`
	File string `json:"file"`
}

func (e entry) uri() string {
	if e.URL != "" {
		return e.URL
	}
	return e.File
}

// DecodeURI extracts the next asset URI from a metadata body. The body is
// either a JSON array of entries or a single entry; the first entry with a
// non-empty absolute URI wins.
func DecodeURI(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", errors.New("empty metadata")
	}

	var entries []entry
	if body[0] == '[' {
		if err := json.Unmarshal(body, &entries); err != nil {
			return "", errors.Errorf("parsing metadata list: %w", err)
		}
	} else {
		var single entry
		if err := json.Unmarshal(body, &single); err != nil {
			return "", errors.Errorf("parsing metadata: %w", err)
		}
		entries = append(entries, single)
	}

	for _, e := range entries {
		raw := e.uri()
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return "", errors.Errorf("invalid asset uri %q", raw)
		}
		return u.String(), nil
	}

	return "", errors.New("metadata has no asset uri")
}
