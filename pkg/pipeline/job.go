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

package pipeline

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/walteh/catlens/pkg/catalog"
)

// State is the lifecycle position of a job.
type State int

const (
	Queued State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// allowed lists every legal transition. Anything else is refused.
var allowed = map[State][]State{
	Queued:  {Running, Cancelled},
	Running: {Completed, Cancelled, Failed},
}

func canMove(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 🧪 Job is one request to run a filter over an input payload. It owns a
// private copy of the input.
type Job struct {
	ID     uuid.UUID
	Filter catalog.Filter

	input  []byte
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu              sync.Mutex
	state           State
	cancelRequested bool
	output          []byte
	err             error
}

func newJob(ctx context.Context, f catalog.Filter, input []byte) *Job {
	jctx, cancel := context.WithCancel(ctx)
	return &Job{
		ID:     uuid.New(),
		Filter: f,
		input:  bytes.Clone(input),
		ctx:    jctx,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  Queued,
	}
}

// State returns the current state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Output returns the result, present only once the job Completed.
func (j *Job) Output() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.state == Completed
}

// Err returns the failure cause of a Failed job.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel stops the job. A queued job becomes Cancelled immediately; a running
// job observes its context at the next stage and ends Cancelled even if its
// work finishes first. Cancelling a terminal job does nothing.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.state.Terminal() {
		j.mu.Unlock()
		return
	}
	j.cancelRequested = true
	if j.state == Queued {
		j.moveLocked(Cancelled)
	}
	j.mu.Unlock()

	j.cancel()
}

// begin moves a queued job to Running and hands over its input.
func (j *Job) begin() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.moveLocked(Running) {
		return nil, false
	}
	return j.input, true
}

// finish records the outcome of the work. A requested cancel always wins.
func (j *Job) finish(out []byte, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case j.cancelRequested || j.ctx.Err() != nil:
		j.moveLocked(Cancelled)
	case err != nil:
		if j.moveLocked(Failed) {
			j.err = err
		}
	default:
		if j.moveLocked(Completed) {
			j.output = out
		}
	}
}

func (j *Job) moveLocked(to State) bool {
	if !canMove(j.state, to) {
		return false
	}
	j.state = to
	if to.Terminal() {
		j.input = nil
		j.cancel()
		close(j.done)
	}
	return true
}
