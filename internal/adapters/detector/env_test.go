package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/sitepipe/internal/adapters/detector"
)

func TestDetectEnvironment_CIForcesLinear(t *testing.T) {
	for _, v := range []string{"true", "1"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CI", v)
			assert.True(t, detector.IsCI())
			assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment())
		})
	}
}

func TestIsCI_Falsy(t *testing.T) {
	for _, v := range []string{"", "false", "0"} {
		t.Setenv("CI", v)
		assert.False(t, detector.IsCI(), v)
	}
}

func TestDetectEnvironment_TestsAreNotATerminal(t *testing.T) {
	t.Setenv("CI", "")
	// go test captures stdout, so it is never a terminal here.
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name     string
		detected detector.OutputMode
		ci, json bool
		want     detector.OutputMode
	}{
		{name: "detected kept", detected: detector.ModeInteractive, want: detector.ModeInteractive},
		{name: "ci flag", detected: detector.ModeInteractive, ci: true, want: detector.ModeLinear},
		{name: "json flag", detected: detector.ModeInteractive, json: true, want: detector.ModeJSON},
		{name: "json beats ci", detected: detector.ModeLinear, ci: true, json: true, want: detector.ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.detected, tt.ci, tt.json))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "interactive", detector.ModeInteractive.String())
	assert.Equal(t, "linear", detector.ModeLinear.String())
	assert.Equal(t, "json", detector.ModeJSON.String())
	assert.True(t, detector.ModeInteractive.Interactive())
	assert.False(t, detector.ModeLinear.Interactive())
}
