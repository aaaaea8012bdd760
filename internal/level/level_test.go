package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsAscending(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Less(all[i]), "%s should rank below %s", all[i-1], all[i])
	}
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, 0, Beginner.Ordinal())
	assert.Equal(t, 1, Intermediate.Ordinal())
	assert.Equal(t, 2, Advanced.Ordinal())
	assert.Equal(t, 3, Professional.Ordinal())
	assert.Equal(t, -1, Level("expert").Ordinal())
}

func TestValid(t *testing.T) {
	for _, l := range All() {
		assert.True(t, l.Valid())
	}
	assert.False(t, Level("").Valid())
	assert.False(t, Level("BEGINNER").Valid())
}

func TestParse(t *testing.T) {
	l, err := Parse("advanced")
	require.NoError(t, err)
	assert.Equal(t, Advanced, l)

	_, err = Parse("pro")
	assert.Error(t, err)
}

func TestLess(t *testing.T) {
	assert.True(t, Beginner.Less(Professional))
	assert.False(t, Professional.Less(Beginner))
	assert.False(t, Intermediate.Less(Intermediate))
}
