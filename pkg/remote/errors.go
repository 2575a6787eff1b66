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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind classifies why loading a remote resource failed.
type Kind int

const (
	UnknownError Kind = iota
	NetworkError      // transport failure not initiated by the caller
	ServerError       // non-success status code
	FormatError       // body missing, unreadable or empty
	Cancelled         // aborted by the caller
)

func (k Kind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case ServerError:
		return "server error"
	case FormatError:
		return "format error"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// Error is the terminal failure of a download or metadata request.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrCancelled)
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNetwork   = &Error{Kind: NetworkError}
	ErrServer    = &Error{Kind: ServerError}
	ErrFormat    = &Error{Kind: FormatError}
	ErrCancelled = &Error{Kind: Cancelled}
	ErrUnknown   = &Error{Kind: UnknownError}
)

// KindOf returns the classification carried by err, or UnknownError when err
// carries none. It panics on a nil error, which has no kind.
func KindOf(err error) Kind {
	if err == nil {
		panic("remote: KindOf called with nil error")
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnknownError
}

// IsCancelled reports whether err is a caller-initiated abort.
func IsCancelled(err error) bool {
	return err != nil && KindOf(err) == Cancelled
}
