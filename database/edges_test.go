package database

import (
	"context"
	"errors"
	"testing"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgesNewEdgesDBHandler(t *testing.T) {
	database := initDB(t)

	// Needed because an edge has a reference to two entities
	_, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Valid call NewEdgesDBHandler", func(t *testing.T) {
		edgesDbHandler, err := NewEdgesDBHandler(database, true)
		assert.NoError(t, err)
		require.NotNil(t, edgesDbHandler)
	})

	t.Run("Invalid call NewEdgesDBHandler with nil database", func(t *testing.T) {
		_, err := NewEdgesDBHandler(nil, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}

func TestEdgesUpsertAndSelect(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)
	edgesDbHandler, err := NewEdgesDBHandler(database, true)
	require.NoError(t, err)

	nodes := []*model.Node{
		{Label: model.LabelCompany, Key: "EDGE", Properties: model.Metadata{"ticker": "EDGE", "name": "Edge Corp"}},
		{Label: model.LabelSector, Key: "Edge Sector", Properties: model.Metadata{"name": "Edge Sector"}},
		{Label: model.LabelEntity, Key: "Edge Person", Properties: model.Metadata{"name": "Edge Person"}},
	}
	for _, node := range nodes {
		require.NoError(t, entitiesDbHandler.UpsertEntity(ctx, node))
	}
	defer func() {
		for _, node := range nodes {
			entitiesDbHandler.DeleteEntity(ctx, node.Label, node.Key)
		}
	}()

	t.Run("Upsert edge by key", func(t *testing.T) {
		written, err := edgesDbHandler.UpsertEdgeByKey(
			ctx,
			model.NodeRef{Label: model.LabelCompany, Key: "EDGE"},
			model.RelationOperatesIn,
			model.NodeRef{Label: model.LabelSector, Key: "Edge Sector"},
			model.Metadata{},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, written)
	})

	t.Run("Upsert edge by name is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			written, err := edgesDbHandler.UpsertEdgeByName(ctx, "Edge Corp", model.Label("EMPLOYS"), "Edge Person", model.Metadata{"updated_at": "now"})
			require.NoError(t, err)
			assert.Equal(t, 1, written)
		}

		paths, err := edgesDbHandler.SelectOutgoingEdges(ctx, model.LabelCompany, "ticker", "EDGE", 10)
		require.NoError(t, err)
		assert.Len(t, paths, 2, "Expected one OPERATES_IN and one EMPLOYS edge")
	})

	t.Run("Upsert edge with unknown endpoint writes nothing", func(t *testing.T) {
		written, err := edgesDbHandler.UpsertEdgeByName(ctx, "Edge Corp", model.RelationRelatedTo, "Nobody", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, written)
	})

	t.Run("Select outgoing edges returns provenance", func(t *testing.T) {
		paths, err := edgesDbHandler.SelectOutgoingEdges(ctx, model.LabelCompany, "ticker", "EDGE", 10)
		require.NoError(t, err)
		require.NotEmpty(t, paths)
		assert.Equal(t, model.GraphPath{
			SourceKey:    "EDGE",
			RelationType: "OPERATES_IN",
			TargetType:   "Sector",
			TargetLabel:  "Edge Sector",
		}, paths[0])
	})

	t.Run("Select outgoing edges respects limit", func(t *testing.T) {
		paths, err := edgesDbHandler.SelectOutgoingEdges(ctx, model.LabelCompany, "ticker", "EDGE", 1)
		require.NoError(t, err)
		assert.Len(t, paths, 1)
	})

	t.Run("Select outgoing edges of unknown node is empty", func(t *testing.T) {
		paths, err := edgesDbHandler.SelectOutgoingEdges(ctx, model.LabelCompany, "ticker", "NONE", 10)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("Invalid relation is rejected", func(t *testing.T) {
		_, err := edgesDbHandler.UpsertEdgeByName(ctx, "Edge Corp", model.Label("BAD-REL"), "Edge Person", nil)
		assert.True(t, errors.Is(err, helper.ErrInvalidLabel))
	})

	t.Run("Count edges", func(t *testing.T) {
		count, err := edgesDbHandler.CountEdges(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(2))
	})
}
