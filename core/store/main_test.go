package store

import (
	"context"
	"log"
	"strings"
	"testing"

	"github.com/siherrmann/fingrapher/core/pipeline"
	"github.com/siherrmann/fingrapher/helper"
	loadSql "github.com/siherrmann/fingrapher/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(database.Instance)
	require.NoError(t, err)

	t.Cleanup(func() { database.Close() })

	return database
}

// topicEmbedder maps text onto one axis per topic word so that searches
// are predictable without a model.
func topicEmbedder(text string) ([]float32, error) {
	v := make([]float32, 384)
	text = strings.ToLower(text)
	for i, topic := range []string{"supply", "revenue", "regulation"} {
		if strings.Contains(text, topic) {
			v[i] = 1
		}
	}
	v[383] = 0.01
	return v, nil
}

func testPipeline() *pipeline.Pipeline {
	return pipeline.NewPipeline(pipeline.ParagraphChunker(), topicEmbedder)
}
