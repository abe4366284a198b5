package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/sitepipe/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsgs   []string
		wantDepths []int
	}{
		{name: "standard error", err: errors.New("plain"), wantMsgs: []string{"plain"}, wantDepths: []int{0}},
		{
			name:       "zerr chain",
			err:        zerr.Wrap(zerr.Wrap(errors.New("root"), "middle"), "outer"),
			wantMsgs:   []string{"outer", "middle", "root"},
			wantDepths: []int{0, 0, 0},
		},
		{
			name:       "metadata on plain error is carried",
			err:        zerr.With(errors.New("root"), "file", "a.twig"),
			wantMsgs:   []string{"root"},
			wantDepths: []int{0},
		},
		{
			name:       "join branches nest",
			err:        zerr.Wrap(errors.Join(zerr.Wrap(errors.New("a2"), "a1"), errors.New("b1")), "top"),
			wantMsgs:   []string{"top", "a1", "a2", "b1"},
			wantDepths: []int{0, 1, 2, 1},
		},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			var msgs []string
			var depths []int
			for _, e := range entries {
				msgs = append(msgs, e.Message())
				depths = append(depths, e.Depth())
			}
			assert.Equal(t, tt.wantMsgs, msgs)
			assert.Equal(t, tt.wantDepths, depths)
		})
	}
}

func TestCollectErrorEntries_Metadata(t *testing.T) {
	err := zerr.With(zerr.With(zerr.New("base"), "k1", "v1"), "k2", 2)
	entries := logger.CollectErrorEntries(err)
	assert.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"k1": "v1", "k2": 2}, entries[0].Meta())

	carried := logger.CollectErrorEntries(zerr.With(errors.New("root"), "file", "a.twig"))
	assert.Equal(t, map[string]any{"file": "a.twig"}, carried[0].Meta())
}

func TestFormatErrorEntries(t *testing.T) {
	err := zerr.With(zerr.Wrap(errors.New("line one\nline two"), "outer"), "k", "v")
	got := logger.FormatErrorEntries(logger.CollectErrorEntries(err))
	want := "Error: outer (k=v)\n\n  Caused by:\n    → line one\n      line two"
	assert.Equal(t, want, got)
}
