// Package logging builds the server's zerolog.Logger: console-pretty output
// to stdout plus an optional file output that can be reopened on SIGHUP,
// mirroring how r2northstar/atlas's cmd/atlas wires its logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Options controls how New builds the logger.
type Options struct {
	Level        zerolog.Level
	Stdout       bool
	StdoutPretty bool
	File         string // absolute or relative path, empty disables file logging
}

// Logger wraps the constructed zerolog.Logger together with a Reopen hook
// for SIGHUP handling.
type Logger struct {
	zerolog.Logger
	reopen func()
}

// Reopen closes and reopens the file output, if one was configured. It is a
// no-op otherwise. Intended to be called from a SIGHUP handler.
func (l *Logger) Reopen() {
	if l.reopen != nil {
		l.reopen()
	}
}

// New constructs a Logger per Options.
func New(o Options) (*Logger, error) {
	var outputs []io.Writer
	if o.Stdout {
		if o.StdoutPretty {
			outputs = append(outputs, newLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout}, o.Level))
		} else {
			outputs = append(outputs, newLevelWriter(os.Stdout, o.Level))
		}
	}

	var reopen func()
	if o.File != "" {
		fn, err := filepath.Abs(o.File)
		if err != nil {
			return nil, fmt.Errorf("resolve log file path: %w", err)
		}
		x := newLevelWriter(nil, o.Level)
		reopen = func() {
			x.swap(func(old io.Writer) io.Writer {
				if c, ok := old.(io.Closer); ok {
					c.Close()
				}
				f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
				if err != nil {
					fmt.Fprintf(os.Stderr, "logging: failed to open log file: %v\n", err)
					return nil
				}
				return f
			})
		}
		outputs = append(outputs, x)
		reopen()
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(outputs...)).
		Level(o.Level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: zl, reopen: reopen}, nil
}

// levelWriter wraps an io.Writer (or zerolog.LevelWriter) guarded by a mutex
// so the file handle can be swapped out safely from another goroutine (the
// signal handler) while the writer is in use.
type levelWriter struct {
	mu sync.Mutex
	w  io.Writer
	l  zerolog.Level
}

var _ zerolog.LevelWriter = (*levelWriter)(nil)

func newLevelWriter(w io.Writer, l zerolog.Level) *levelWriter {
	return &levelWriter{w: w, l: l}
}

func (lw *levelWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.w == nil {
		return len(p), nil
	}
	return lw.w.Write(p)
}

func (lw *levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.l {
		return len(p), nil
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.w == nil {
		return len(p), nil
	}
	if l, ok := lw.w.(zerolog.LevelWriter); ok {
		return l.WriteLevel(level, p)
	}
	return lw.w.Write(p)
}

func (lw *levelWriter) swap(fn func(io.Writer) io.Writer) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.w = fn(lw.w)
}
