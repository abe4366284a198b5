package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("styles")
	is2 := domain.NewInternedString("styles")

	assert.Equal(t, is1.Value(), is2.Value())
	assert.Equal(t, "styles", is1.String())
}

func TestInternedStrings(t *testing.T) {
	got := domain.NewInternedStrings([]string{"clear", "html"})
	require.Len(t, got, 2)
	assert.Equal(t, "clear", got[0].String())
	assert.Equal(t, "html", got[1].String())
}

func TestInternedStringJSON(t *testing.T) {
	original := domain.NewInternedString("minify-scripts")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `"minify-scripts"`, string(data))

	var decoded domain.InternedString
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
