package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableAfterResize(t *testing.T) {
	got, err := AvailableAfterResize(10, 10, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, got)

	// 4 unidades ya facturadas
	got, err = AvailableAfterResize(10, 6, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	_, err = AvailableAfterResize(10, 6, 3)
	assert.Error(t, err)
}

func TestValidAvailable(t *testing.T) {
	assert.True(t, ValidAvailable(10, 10))
	assert.True(t, ValidAvailable(10, 0))
	assert.False(t, ValidAvailable(10, 11))
	assert.False(t, ValidAvailable(10, -1))
}
