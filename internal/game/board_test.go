package game

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pickends/internal/randutil"
)

func TestWindow(t *testing.T) {
	w := FullWindow(4)
	assert.Equal(t, Window{Left: 0, Right: 3}, w)
	assert.Equal(t, 4, w.Len())
	assert.False(t, w.Empty())
	assert.True(t, w.ValidFor(4))
	assert.False(t, w.ValidFor(3))

	assert.Equal(t, 0, w.Index(Left))
	assert.Equal(t, 3, w.Index(Right))
	assert.Equal(t, Window{Left: 1, Right: 3}, w.Without(Left))
	assert.Equal(t, Window{Left: 0, Right: 2}, w.Without(Right))

	empty := Window{Left: 2, Right: 1}
	assert.True(t, empty.Empty())
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.ValidFor(4))
	assert.False(t, Window{Left: 3, Right: 1}.ValidFor(4))
	assert.False(t, Window{Left: -1, Right: 1}.ValidFor(4))

	assert.Equal(t, []int{7, 2}, Board{4, 7, 2, 9}.Slice(Window{Left: 1, Right: 2}))
	assert.Empty(t, Board{4, 7, 2, 9}.Slice(empty))
}

func TestParseEnd(t *testing.T) {
	for _, in := range []string{"left", "LEFT", " l "} {
		end, err := ParseEnd(in)
		require.NoError(t, err)
		assert.Equal(t, Left, end)
	}
	end, err := ParseEnd("right")
	require.NoError(t, err)
	assert.Equal(t, Right, end)

	_, err = ParseEnd("middle")
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestGenerateRandom(t *testing.T) {
	rng := randutil.New(99)
	for i := 0; i < 50; i++ {
		board, err := Generate(rng, GeneratorConfig{Length: 14, MaxValue: 99, Kind: GeneratorRandom})
		require.NoError(t, err)
		require.Len(t, board, 14)
		assert.Equal(t, 1, board.Sum()%2, "total must be odd so no tie is possible")
		for _, v := range board {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 99)
		}
		assert.NoError(t, board.Validate())
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := GeneratorConfig{Length: 10, MaxValue: 20}
	a, err := Generate(randutil.New(5), cfg)
	require.NoError(t, err)
	b, err := Generate(randutil.New(5), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeneratePermutation(t *testing.T) {
	board, err := Generate(randutil.New(3), GeneratorConfig{Length: 14, Kind: GeneratorPermutation})
	require.NoError(t, err)

	sorted := append([]int(nil), board...)
	sort.Ints(sorted)
	for i, v := range sorted {
		assert.Equal(t, i+1, v)
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	rng := randutil.New(1)
	tests := []GeneratorConfig{
		{Length: 0, MaxValue: 10},
		{Length: 3, MaxValue: 10},
		{Length: 4, MaxValue: 0},
		{Length: 4, MaxValue: 1},
		{Length: 4, MaxValue: 10, Kind: "fibonacci"},
	}
	for _, cfg := range tests {
		_, err := Generate(rng, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "%+v", cfg)
	}
}
