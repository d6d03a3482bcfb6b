package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0, 0}, []float32{1, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0, 0}, []float32{0, 1, 0})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, sim, 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0, 0}, []float32{-1, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, sim, 1e-6)
	})

	t.Run("nil and empty inputs fail soft to zero", func(t *testing.T) {
		sim, err := CosineSimilarity(nil, []float32{1, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, float32(0), sim)

		sim, err = CosineSimilarity([]float32{1, 0, 0}, nil)
		require.NoError(t, err)
		assert.Equal(t, float32(0), sim)

		sim, err = CosineSimilarity([]float32{}, []float32{})
		require.NoError(t, err)
		assert.Equal(t, float32(0), sim)
	})

	t.Run("length mismatch fails loud", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.Error(t, err)
	})

	t.Run("zero norm yields zero", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, float32(0), sim)
	})

	t.Run("unnormalized vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{3, 4}, []float32{6, 8})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-6)
	})
}
