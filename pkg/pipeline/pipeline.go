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

// Package pipeline runs filter jobs on a bounded worker pool.
//
// Two modes share the pool. Applied mode keeps a single active job per
// pipeline and cancels it whenever a new one is submitted. Preview mode runs
// one independent job per catalog entry.
package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/catalog"
	"github.com/walteh/catlens/pkg/mainloop"
	"github.com/walteh/catlens/pkg/observable"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds the pool when no explicit size is given.
const DefaultWorkers = 5

// ⚙️ Pipeline is a bounded filter worker pool delivering on one executor.
type Pipeline struct {
	sem      *semaphore.Weighted
	executor mainloop.Executor

	processing *observable.Cell[bool]

	mu     sync.Mutex
	active *Job
	jobs   map[*Job]struct{}

	wg sync.WaitGroup
}

// 🏭 New creates a pipeline that runs at most workers jobs at once.
func New(executor mainloop.Executor, workers int) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		sem:        semaphore.NewWeighted(int64(workers)),
		executor:   executor,
		processing: observable.NewCell(false),
		jobs:       make(map[*Job]struct{}),
	}
}

// Processing is true from the moment an applied job is submitted until the
// completion of the job that is still active is observed.
func (p *Pipeline) Processing() *observable.Cell[bool] {
	return p.processing
}

// Apply cancels the active applied job, if any, and submits f over input in
// its place. onComplete receives the output on the executor only if this job
// Completed while still active; cancelled, failed and superseded jobs deliver
// nothing. Must be called on the executor.
func (p *Pipeline) Apply(ctx context.Context, f catalog.Filter, input []byte, onComplete func([]byte)) *Job {
	logger := zerolog.Ctx(ctx)
	j := newJob(ctx, f, input)

	p.mu.Lock()
	prev := p.active
	p.active = j
	if prev != nil {
		prev.Cancel()
	}
	p.mu.Unlock()

	if prev != nil {
		logger.Debug().Str("job", prev.ID.String()).Str("by", j.ID.String()).Msg("applied job superseded")
	}

	observable.SetDistinct(p.processing, true)

	p.start(j, func(j *Job) {
		p.mu.Lock()
		if p.active != j {
			p.mu.Unlock()
			logger.Debug().Str("job", j.ID.String()).Str("state", j.State().String()).Msg("discarding stale applied job")
			return
		}
		p.active = nil
		p.mu.Unlock()

		switch j.State() {
		case Completed:
			out, _ := j.Output()
			onComplete(out)
		case Failed:
			logger.Warn().Err(j.Err()).Str("job", j.ID.String()).Str("filter", j.Filter.Name()).Msg("applied filter failed")
		default:
			logger.Debug().Str("job", j.ID.String()).Str("filter", j.Filter.Name()).Msg("applied filter cancelled")
		}

		p.processing.Set(false)
	})

	return j
}

// PrecomputeAll submits one job per catalog entry over input. onEach fires on
// the executor for every job that Completed, in completion order.
func (p *Pipeline) PrecomputeAll(ctx context.Context, c *catalog.Catalog, input []byte, onEach func(index int, output []byte)) []*Job {
	logger := zerolog.Ctx(ctx)
	jobs := make([]*Job, 0, c.Len())

	for i := 0; i < c.Len(); i++ {
		index := i
		j := newJob(ctx, c.At(i), input)
		jobs = append(jobs, j)

		p.start(j, func(j *Job) {
			out, ok := j.Output()
			if !ok {
				if j.State() == Failed {
					logger.Warn().Err(j.Err()).Str("filter", j.Filter.Name()).Msg("preview failed")
				}
				return
			}
			onEach(index, out)
		})
	}

	logger.Debug().Int("jobs", len(jobs)).Msg("previews submitted")
	return jobs
}

// CancelAll cancels every job that is still queued or running.
func (p *Pipeline) CancelAll() {
	p.mu.Lock()
	jobs := make([]*Job, 0, len(p.jobs))
	for j := range p.jobs {
		jobs = append(jobs, j)
	}
	p.mu.Unlock()

	for _, j := range jobs {
		j.Cancel()
	}
}

// Wait blocks until every submitted job is terminal. Deliveries may still be
// queued on the executor when it returns.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) start(j *Job, deliver func(*Job)) {
	p.mu.Lock()
	p.jobs[j] = struct{}{}
	p.mu.Unlock()

	logger := zerolog.Ctx(j.ctx).With().Str("job", j.ID.String()).Str("filter", j.Filter.Name()).Logger()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.run(j, &logger)

		p.mu.Lock()
		delete(p.jobs, j)
		p.mu.Unlock()

		p.executor.Dispatch(func() { deliver(j) })
	}()
}

func (p *Pipeline) run(j *Job, logger *zerolog.Logger) {
	if err := p.sem.Acquire(j.ctx, 1); err != nil {
		j.finish(nil, err)
		logger.Debug().Msg("job cancelled while queued")
		return
	}
	defer p.sem.Release(1)

	input, ok := j.begin()
	if !ok {
		logger.Debug().Msg("job cancelled while queued")
		return
	}

	logger.Debug().Msg("job running")
	out, err := j.Filter.Process(j.ctx, input)
	j.finish(out, err)
	logger.Debug().Str("state", j.State().String()).Msg("job finished")
}
