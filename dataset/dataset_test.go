package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadItems(t *testing.T) {
	t.Run("Strict", func(t *testing.T) {
		input := "A 0 0\n\nB 1 0\nC 10 10\n"
		items, err := ReadItems(strings.NewReader(input), ReaderConfig{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "B", items[1].ID)
		assert.Equal(t, []float64{10, 10}, items[2].Coords)
	})

	t.Run("StrictMalformed", func(t *testing.T) {
		input := "A 0 0\nB 1 x\n"
		_, err := ReadItems(strings.NewReader(input), ReaderConfig{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedLine))
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("StrictRagged", func(t *testing.T) {
		input := "A 0 0\nB 1\n"
		_, err := ReadItems(strings.NewReader(input), ReaderConfig{})
		assert.ErrorIs(t, err, ErrRaggedDataset)
		items, err := ReadItems(strings.NewReader(input), ReaderConfig{AllowRagged: true})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Lenient", func(t *testing.T) {
		input := "A 0 0 x\nB 1 y\nC 2 2\nD\n"
		items, err := ReadItems(strings.NewReader(input), ReaderConfig{Lenient: true})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "A", items[0].ID)
		assert.Equal(t, []float64{0, 0}, items[0].Coords)
		assert.Equal(t, "C", items[1].ID)
	})
}

func TestCurveFromSeries(t *testing.T) {
	c := CurveFromSeries(Item{ID: "ts", Coords: []float64{5, 7, 6}})
	assert.Equal(t, "ts", c.ID)
	assert.Equal(t, []Point2d{{0, 5}, {1, 7}, {2, 6}}, c.Points)

	curves := CurvesFromItems([]Item{{ID: "a", Coords: []float64{1}}, {ID: "b", Coords: []float64{1, 2}}})
	require.Len(t, curves, 2)
	assert.Equal(t, 2, curves[1].Len())
}

func TestCurveHelpers(t *testing.T) {
	c := NewCurve([]Point2d{{0, 0}, {3, 4}})
	assert.NotEmpty(t, c.ID)
	assert.NotEqual(t, c.ID, NewCurve(nil).ID)
	cp := c.Copy()
	assert.True(t, c.Equal(cp))
	cp.Points[0].X = 1
	assert.False(t, c.Equal(cp))
	assert.InDelta(t, 5.0, c.Points[0].Dist(c.Points[1]), 1e-9)
	assert.Equal(t, Point2d{1.5, 2}, c.Points[0].Mid(c.Points[1]))
}
