package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	t.Run("Marshal nil and non-finite values", func(t *testing.T) {
		data, err := Metadata(nil).Marshal()
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))

		data, err = Metadata{"ratio": math.NaN()}.Marshal()
		require.NoError(t, err)
		assert.JSONEq(t, `{"ratio": null}`, string(data))
	})

	t.Run("Scan JSON bytes", func(t *testing.T) {
		m := Metadata{}
		require.NoError(t, m.Scan([]byte(`{"ticker": "META", "year": 2024}`)))
		assert.Equal(t, "META", m.String("ticker"))
		assert.Equal(t, "2024", m.String("year"))
	})

	t.Run("Scan nil and wrong type", func(t *testing.T) {
		m := Metadata{"x": 1}
		require.NoError(t, m.Scan(nil))
		assert.Empty(t, m)
		assert.Error(t, m.Scan(42))
	})

	t.Run("Strings skips nil values", func(t *testing.T) {
		assert.Equal(t, map[string]string{"ticker": "META"}, Metadata{"ticker": "META", "url": nil}.Strings())
	})
}
