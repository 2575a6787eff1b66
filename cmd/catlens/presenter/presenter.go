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

// Package presenter renders session state on the terminal.
package presenter

import (
	"context"
	"fmt"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/catlens/pkg/observable"
	"github.com/walteh/catlens/pkg/remote"
	"github.com/walteh/catlens/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// 📢 Presenter turns cell changes and editor callbacks into user feedback.
type Presenter struct {
	log zerolog.Logger

	mu      sync.Mutex
	spinner *pterm.SpinnerPrinter
	bag     observable.Bag
}

// 🎯 New creates a presenter logging through the context logger.
func New(ctx context.Context) *Presenter {
	return &Presenter{log: *zerolog.Ctx(ctx)}
}

// BindLoader follows a loader's cells until Close.
func (p *Presenter) BindLoader(l *session.Loader) {
	p.bag.Add(l.IsLoading.Subscribe(p.loadingChanged))
	p.bag.Add(l.Title.Subscribe(p.titleChanged))
}

// BindEditor follows an editor's cells and shows its messages.
func (p *Presenter) BindEditor(e *session.Editor) {
	p.bag.Add(e.IsProcessing().Subscribe(p.processingChanged))
	e.OnMessage = p.Message
}

// Close releases every subscription and stops a running spinner.
func (p *Presenter) Close() {
	p.bag.Dispose()
	p.stopSpinner()
}

func (p *Presenter) loadingChanged(loading bool) {
	if loading {
		p.startSpinner("Fetching a cat")
		return
	}
	p.stopSpinner()
}

func (p *Presenter) processingChanged(processing bool) {
	if processing {
		p.startSpinner("Applying filter")
		return
	}
	p.stopSpinner()
}

func (p *Presenter) titleChanged(title string) {
	switch title {
	case "":
		return
	case session.TitleCancelled:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏹️"}).Println(title)
		p.log.Warn().Msg("load cancelled")
	case session.TitleLoadingError:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(title)
		p.log.Error().Msg("load failed")
	default:
		pterm.Info.WithPrefix(pterm.Prefix{Text: "🐱"}).Println(title)
		p.log.Debug().Str("uri", title).Msg("cat resolved")
	}
}

// LoadFailed explains why loading a cat failed.
func (p *Presenter) LoadFailed(err error) {
	reason := loadFailure(err)
	if errors.Is(err, remote.ErrCancelled) {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏹️"}).Println(reason)
		p.log.Debug().Err(err).Msg(reason)
		return
	}
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(reason)
	p.log.Debug().Err(err).Msg(reason)
}

func loadFailure(err error) string {
	switch {
	case errors.Is(err, remote.ErrCancelled):
		return "loading was cancelled"
	case errors.Is(err, remote.ErrNetwork):
		return "the cat service could not be reached"
	case errors.Is(err, remote.ErrServer):
		return "the cat service rejected the request"
	case errors.Is(err, remote.ErrFormat):
		return "the cat service sent an unusable response"
	case errors.Is(err, remote.ErrUnknown):
		return "loading failed for an unknown reason"
	default:
		return "loading failed"
	}
}

// Message shows an editor message and acknowledges it straight away.
func (p *Presenter) Message(title, message string, then func()) {
	text := fmt.Sprintf("%s: %s", title, message)
	if message == session.MessageSaved {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(text)
		p.log.Info().Msg(message)
	} else {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(text)
		p.log.Error().Msg(message)
	}
	if then != nil {
		then()
	}
}

// 🔍 LogValidation reports the outcome of a step.
func (p *Presenter) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		p.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		p.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	p.log.Warn().Msg(description)
}

// 🌅 LogPreview reports one preview file.
func (p *Presenter) LogPreview(name, path string, err error) {
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Printf("%s preview failed\n", name)
		p.log.Error().Err(err).Str("filter", name).Msg("preview failed")
		return
	}
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"}).Printf("%s → %s\n", name, path)
	p.log.Debug().Str("filter", name).Str("path", path).Msg("preview written")
}

func (p *Presenter) startSpinner(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil {
		p.spinner.UpdateText(text)
		return
	}
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		p.log.Debug().Err(err).Msg("starting spinner")
		return
	}
	p.spinner = spinner
}

func (p *Presenter) stopSpinner() {
	p.mu.Lock()
	spinner := p.spinner
	p.spinner = nil
	p.mu.Unlock()

	if spinner == nil {
		return
	}
	if err := spinner.Stop(); err != nil {
		p.log.Debug().Err(err).Msg("stopping spinner")
	}
}
