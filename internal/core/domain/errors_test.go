package domain_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestAnnotate_KeepsSentinelIdentity(t *testing.T) {
	err := domain.Annotate(domain.ErrPipelineNotFound, "pipeline", "deploy")
	require.ErrorIs(t, err, domain.ErrPipelineNotFound)
	assert.Equal(t, "pipeline not found", err.Error())

	var z *zerr.Error
	require.ErrorAs(t, err, &z)
	assert.Equal(t, map[string]any{"pipeline": "deploy"}, z.Metadata())

	again := zerr.With(err, "attempt", 2)
	require.ErrorIs(t, again, domain.ErrPipelineNotFound)
}

func TestWrap_MatchesSentinelAndCause(t *testing.T) {
	err := domain.Wrap(fs.ErrPermission, domain.ErrOutputWriteFailed)
	require.ErrorIs(t, err, domain.ErrOutputWriteFailed)
	require.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, "failed to write output file: permission denied", err.Error())

	tagged := zerr.With(err, "path", "styles/main.css")
	require.ErrorIs(t, tagged, domain.ErrOutputWriteFailed)
	require.ErrorIs(t, tagged, fs.ErrPermission)
	assert.False(t, errors.Is(tagged, domain.ErrOutputClearFailed))

	assert.NoError(t, domain.Wrap(nil, domain.ErrOutputWriteFailed))
}
