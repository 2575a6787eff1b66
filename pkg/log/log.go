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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent job entries
	nameWidth   = 12 // width for the filter name
	stateWidth  = 11 // width for the job state
)

// 🎯 JobEntry is one finished filter job for display.
type JobEntry struct {
	Filter   string        // filter name
	State    string        // terminal state
	Bytes    int           // output size
	Path     string        // where the output went, if written
	Duration time.Duration // time from submit to completion
}

// 🐱 CatEntry describes the cat a command works on.
type CatEntry struct {
	URI   string // source URI
	Bytes int    // payload size
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	jobs    []JobEntry
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// Zerolog returns the structured logger so it can be put in a context with
// WithContext.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger, and its zerolog logger, to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) formatJob(job JobEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch job.State {
	case "completed":
		symbol = '✓'
		symbolColor = color.FgGreen
	case "failed":
		symbol = '✗'
		symbolColor = color.FgRed
	case "cancelled":
		symbol = '⊘'
		symbolColor = color.FgYellow
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, job.Filter),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", stateWidth, job.State)))

	if job.Path != "" {
		line += " " + color.New(color.Faint).Sprint(job.Path)
	}
	return line
}

// 📝 LogJob prints a finished filter job
func (l *Logger) LogJob(ctx context.Context, job JobEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = append(l.jobs, job)

	fmt.Fprintln(l.console, l.formatJob(job))

	l.zlog.Info().
		Str("filter", job.Filter).
		Str("state", job.State).
		Int("bytes", job.Bytes).
		Str("path", job.Path).
		Dur("duration", job.Duration).
		Msg("filter job")
}

// 📝 StartCat prints the header for the cat being worked on
func (l *Logger) StartCat(ctx context.Context, cat CatEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = nil

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(cat.URI),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%d bytes", cat.Bytes)))

	l.zlog.Info().
		Str("uri", cat.URI).
		Int("bytes", cat.Bytes).
		Msg("cat loaded")
}

// 📝 EndCat logs a summary of the jobs printed since StartCat
func (l *Logger) EndCat(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	completed := 0
	for _, j := range l.jobs {
		if j.State == "completed" {
			completed++
		}
	}

	l.zlog.Info().
		Int("jobs", len(l.jobs)).
		Int("completed", completed).
		Msg("cat done")

	l.jobs = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("catlens")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
