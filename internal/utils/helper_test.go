package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains(nil, "a"))
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit("", 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	n, err = ParseLimit("500", 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, n)

	_, err = ParseLimit("0", 50, 200)
	assert.Error(t, err)
	_, err = ParseLimit("ten", 50, 200)
	assert.Error(t, err)
}

func TestParseUUID(t *testing.T) {
	_, err := ParseUUID("not-a-uuid")
	assert.Error(t, err)

	id, err := ParseUUID("6f1c2b9e-8d4a-4c1e-9b7a-2f3d4e5a6b7c")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2b9e-8d4a-4c1e-9b7a-2f3d4e5a6b7c", id.String())
}
