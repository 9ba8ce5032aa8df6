package sql

import (
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func functionExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestInit(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")

		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgcrypto extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		assert.NoError(t, Init(db.Instance))
		assert.NoError(t, Init(db.Instance))
	})
}

func TestLoadSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	loaders := []struct {
		name      string
		load      func(*sql.DB, bool) error
		functions []string
	}{
		{"documents", LoadDocumentsSql, DocumentsFunctions},
		{"chunks", LoadChunksSql, ChunksFunctions},
		{"entities", LoadEntitiesSql, EntitiesFunctions},
		{"edges", LoadEdgesSql, EdgesFunctions},
	}

	for _, loader := range loaders {
		t.Run("Load "+loader.name+" SQL functions", func(t *testing.T) {
			err := loader.load(db.Instance, false)
			assert.NoError(t, err)

			for _, funcName := range loader.functions {
				assert.True(t, functionExists(t, db.Instance, funcName), "Function %s should exist", funcName)
			}
		})

		t.Run("Load "+loader.name+" SQL is idempotent without force", func(t *testing.T) {
			assert.NoError(t, loader.load(db.Instance, false))
		})

		t.Run("Load "+loader.name+" SQL with force reloads", func(t *testing.T) {
			assert.NoError(t, loader.load(db.Instance, true))

			for _, funcName := range loader.functions {
				assert.True(t, functionExists(t, db.Instance, funcName), "Function %s should exist after force reload", funcName)
			}
		})
	}
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		all := [][]string{DocumentsFunctions, ChunksFunctions, EntitiesFunctions, EdgesFunctions}
		for _, functions := range all {
			for _, funcName := range functions {
				assert.True(t, functionExists(t, db.Instance, funcName), "Function %s should exist", funcName)
			}
		}
	})

	t.Run("Load all SQL with force reloads", func(t *testing.T) {
		assert.NoError(t, LoadAllSql(db.Instance, true))
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		require.NoError(t, LoadDocumentsSql(db.Instance, false))

		exists, err := checkFunctions(db.Instance, DocumentsFunctions)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"init_documents", "nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Check functions with empty list", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for empty function list")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	files := map[string]string{
		"documents": documentsSQL,
		"chunks":    chunksSQL,
		"entities":  entitiesSQL,
		"edges":     edgesSQL,
	}

	t.Run("Init SQL is embedded", func(t *testing.T) {
		assert.Contains(t, initSQL, "CREATE EXTENSION")
	})

	for name, content := range files {
		t.Run(name+" SQL is embedded", func(t *testing.T) {
			assert.Contains(t, content, "CREATE OR REPLACE FUNCTION init_"+name)
		})
	}

	t.Run("Similarity search uses cosine distance", func(t *testing.T) {
		assert.Contains(t, chunksSQL, "<=>")
	})
}
