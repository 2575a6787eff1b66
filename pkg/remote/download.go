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
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/mainloop"
	"gitlab.com/tozd/go/errors"
)

// 📬 Result is the single terminal outcome of a download: exactly one of
// Payload and Err is set.
type Result struct {
	Payload []byte
	Err     error
}

// OK reports whether the download produced a payload.
func (r Result) OK() bool {
	return r.Err == nil
}

// 🧰 Client creates downloads that share a transport and deliver on one
// executor.
type Client struct {
	transport Transport
	executor  mainloop.Executor
}

// 🏭 NewClient creates a client.
func NewClient(transport Transport, executor mainloop.Executor) *Client {
	return &Client{transport: transport, executor: executor}
}

// NewDownload creates a download that has not started.
func (c *Client) NewDownload() *Download {
	return &Download{transport: c.transport, executor: c.executor}
}

type downloadState int

const (
	downloadIdle downloadState = iota
	downloadRunning
	downloadFinished
)

// ⬇️ Download is one cancellable transfer of a single remote asset.
//
// Start and Cancel are expected to be called from the executor the download
// delivers on.
type Download struct {
	transport Transport
	executor  mainloop.Executor

	mu        sync.Mutex
	state     downloadState
	cancelled bool
	cancel    context.CancelFunc
}

// Start begins the transfer of uri. onComplete fires exactly once on the
// executor. A download that was cancelled before Start, or started a second
// time, reports synchronously.
func (d *Download) Start(ctx context.Context, uri string, onComplete func(Result)) {
	d.mu.Lock()
	switch {
	case d.state != downloadIdle:
		d.mu.Unlock()
		onComplete(Result{Err: newError(UnknownError, errors.New("download already started"))})
		return
	case d.cancelled:
		d.state = downloadFinished
		d.mu.Unlock()
		onComplete(Result{Err: newError(Cancelled, nil)})
		return
	}
	tctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.state = downloadRunning
	d.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().Str("uri", uri).Logger()
	logger.Debug().Msg("download started")

	go func() {
		defer cancel()

		resp, err := d.fetch(tctx, uri)
		res := d.finish(resp, err)

		if res.Err != nil {
			logger.Debug().Err(res.Err).Msg("download failed")
		} else {
			logger.Debug().Int("bytes", len(res.Payload)).Msg("download finished")
		}

		d.executor.Dispatch(func() { onComplete(res) })
	}()
}

// fetch runs the transport, folding a panic into an error the classifier
// cannot place anywhere but UnknownError.
func (d *Download) fetch(ctx context.Context, uri string) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &panicError{value: r}
		}
	}()
	return d.transport.Fetch(ctx, uri)
}

type panicError struct{ value any }

func (p *panicError) Error() string { return "transport panicked" }

// finish classifies the outcome and marks the download terminal in one step,
// so a Cancel racing with it either wins outright or becomes a no-op.
func (d *Download) finish(resp *Response, err error) Result {
	d.mu.Lock()
	cancelled := d.cancelled
	d.state = downloadFinished
	d.mu.Unlock()

	if resp != nil && resp.Location != "" {
		defer os.Remove(resp.Location)
	}

	return classify(cancelled, resp, err)
}

func classify(cancelled bool, resp *Response, err error) Result {
	var pe *panicError
	switch {
	case cancelled:
		return Result{Err: newError(Cancelled, err)}
	case err != nil && errors.As(err, &pe):
		return Result{Err: newError(UnknownError, err)}
	case err != nil && !errors.Is(err, context.Canceled):
		return Result{Err: newError(NetworkError, err)}
	case err != nil:
		return Result{Err: newError(Cancelled, err)}
	case resp == nil:
		return Result{Err: newError(UnknownError, errors.New("transport returned no response"))}
	case resp.StatusCode != http.StatusOK:
		return Result{Err: newError(ServerError, errors.Errorf("unexpected status code: %d", resp.StatusCode))}
	case resp.Location == "":
		return Result{Err: newError(FormatError, errors.New("no body location"))}
	}

	data, rerr := os.ReadFile(resp.Location)
	if rerr != nil {
		return Result{Err: newError(FormatError, errors.Errorf("reading body: %w", rerr))}
	}
	if len(data) == 0 {
		return Result{Err: newError(FormatError, errors.New("empty body"))}
	}
	return Result{Payload: data}
}

// Cancel requests cancellation. It is idempotent, safe before Start, and a
// no-op once the outcome is decided.
func (d *Download) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == downloadFinished || d.cancelled {
		return
	}
	d.cancelled = true
	if d.cancel != nil {
		d.cancel()
	}
}

// Running reports whether the transfer is in flight.
func (d *Download) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == downloadRunning
}
