package model

import (
	"strings"
	"testing"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabel(t *testing.T) {
	t.Run("Valid labels", func(t *testing.T) {
		for _, raw := range []string{"Company", "ORGANIZATION", "Sub_Sector2"} {
			label, err := NewLabel(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, raw, label.String())
			assert.True(t, label.Valid())
		}
	})

	t.Run("Reject injection and malformed labels", func(t *testing.T) {
		for _, raw := range []string{"", "1Company", "Company) DETACH DELETE (n", "has space", "quote'", strings.Repeat("a", 65)} {
			_, err := NewLabel(raw)
			assert.ErrorIs(t, err, helper.ErrInvalidLabel, raw)
		}
	})
}

func TestNewEntityLabel(t *testing.T) {
	label, err := NewEntityLabel("  ")
	require.NoError(t, err)
	assert.Equal(t, LabelEntity, label)

	label, err = NewEntityLabel(" PERSON ")
	require.NoError(t, err)
	assert.Equal(t, Label("PERSON"), label)

	_, err = NewEntityLabel("PER-SON")
	assert.ErrorIs(t, err, helper.ErrInvalidLabel)
}

func TestNormalizeRelation(t *testing.T) {
	t.Run("Upper case with underscores", func(t *testing.T) {
		label, err := NormalizeRelation("depends on")
		require.NoError(t, err)
		assert.Equal(t, Label("DEPENDS_ON"), label)
	})

	t.Run("Blank relation", func(t *testing.T) {
		label, err := NormalizeRelation("")
		require.NoError(t, err)
		assert.Equal(t, RelationRelatedTo, label)
	})

	t.Run("Invalid relation", func(t *testing.T) {
		_, err := NormalizeRelation("owns; DROP")
		assert.ErrorIs(t, err, helper.ErrInvalidLabel)
	})

	assert.False(t, Label("bad label").Valid())
}
