package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/sitepipe/internal/core/ports"
)

// messager is satisfied by zerr errors and yields the message without its cause.
type messager interface {
	Message() string
}

// metadataCarrier is satisfied by zerr errors.
type metadataCarrier interface {
	Metadata() map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	jsonMode bool
}

// New creates a Logger writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the output destination, keeping the current format.
// A nil writer restores stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

// rebuild must be called with mu held.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(l.output, opts))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its full cause chain.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// errorEntry is one link of an error chain. depth grows inside errors.Join branches.
type errorEntry struct {
	message  string
	metadata map[string]any
	depth    int
}

func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	collectInto(&entries, err, 0, nil)
	return entries
}

// Inside a join branch, causes are nested one level below the branch head.
func collectInto(entries *[]errorEntry, err error, depth int, carry map[string]any) {
	d := depth
	for err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				collectInto(entries, branch, d+1, carry)
			}
			return
		}

		m, ok := err.(messager)
		if !ok {
			*entries = append(*entries, errorEntry{message: err.Error(), metadata: carry, depth: d})
			return
		}

		meta := carry
		if mc, ok := err.(metadataCarrier); ok {
			meta = mergeMetadata(carry, mc.Metadata())
		}
		carry = nil

		// zerr.With on a plain error produces an empty message; its
		// metadata belongs to whatever it wraps.
		if m.Message() == "" {
			carry = meta
		} else {
			*entries = append(*entries, errorEntry{message: m.Message(), metadata: meta, depth: d})
			if depth > 0 {
				d = depth + 1
			}
		}
		err = errors.Unwrap(err)
	}
}

func mergeMetadata(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func formatErrorEntries(entries []errorEntry) string {
	var lines []string
	for i, e := range entries {
		text := e.message + formatMetadata(e.metadata)
		msgLines := strings.Split(text, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		indent := "    " + strings.Repeat("  ", max(e.depth-entries[0].depth-1, 0))
		lines = append(lines, indent+"→ "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+"  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func formatMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
