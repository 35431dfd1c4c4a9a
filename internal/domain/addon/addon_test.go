package addon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	priced, names, err := Select(Defaults(), []string{"tomatoSauce", "water", "water"})
	require.NoError(t, err)

	require.Len(t, priced, 3)
	assert.True(t, priced[0].Selected)
	assert.False(t, priced[1].Selected)
	assert.True(t, priced[2].Selected)
	assert.Equal(t, []string{"Water", "Tomato Sauce"}, names)
}

func TestSelect_None(t *testing.T) {
	priced, names, err := Select(Defaults(), nil)
	require.NoError(t, err)
	assert.Len(t, priced, 3)
	assert.Empty(t, names)
	for _, p := range priced {
		assert.False(t, p.Selected)
	}
}

func TestSelect_Unknown(t *testing.T) {
	_, _, err := Select(Defaults(), []string{"water", "caviar"})

	var unknown *UnknownAddOnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "caviar", unknown.ID)
}
