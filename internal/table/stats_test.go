package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(vals ...any) *Column {
	return &Column{Name: "v", Kind: KindInteger, Values: vals}
}

func TestTukeyFence(t *testing.T) {
	c := numbers(int64(1), int64(2), int64(3), int64(4), int64(5), int64(100))

	f, ok := TukeyFence(c)
	require.True(t, ok)
	assert.InDelta(t, 2.25, f.Q1, 1e-9)
	assert.InDelta(t, 4.75, f.Q3, 1e-9)
	assert.InDelta(t, -1.5, f.Lower, 1e-9)
	assert.InDelta(t, 8.5, f.Upper, 1e-9)
	assert.True(t, f.Outside(100))
	assert.False(t, f.Outside(5))

	_, ok = TukeyFence(numbers(nil, nil))
	assert.False(t, ok)
}

func TestMeanAndMode(t *testing.T) {
	m, ok := Mean(numbers(int64(1), nil, int64(4)))
	require.True(t, ok)
	assert.InDelta(t, 2.5, m, 1e-9)

	_, ok = Mean(numbers(nil))
	assert.False(t, ok)

	mode, ok := Mode(&Column{Values: []any{"b", "a", nil, "b", "a", "c"}})
	require.True(t, ok)
	assert.Equal(t, "a", mode, "ties resolve to the smallest value")

	_, ok = Mode(&Column{Values: []any{nil}})
	assert.False(t, ok)
}

func TestRetype(t *testing.T) {
	c := &Column{Kind: KindText, Values: []any{int64(1), 2.5, nil}}
	Retype(c)
	assert.Equal(t, KindFloat, c.Kind)
	assert.Equal(t, []any{1.0, 2.5, nil}, c.Values)

	c = &Column{Kind: KindText, Values: []any{int64(1), "x"}}
	Retype(c)
	assert.Equal(t, KindText, c.Kind)
}
