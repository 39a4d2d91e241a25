package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, New())
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestAtEncodesTime(t *testing.T) {
	g := NewGenerator(42)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	a := g.At(at)
	b := g.At(at)
	assert.Less(t, a, b)

	got, err := Time(a)
	require.NoError(t, err)
	assert.True(t, got.Equal(at))
}

func TestTimeRejectsGarbage(t *testing.T) {
	_, err := Time("not-an-id")
	assert.Error(t, err)
}
