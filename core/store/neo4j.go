package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// Neo4jGraphStore keeps the property graph in Neo4j.
// Cypher text only ever contains validated labels, every value is a parameter.
type Neo4jGraphStore struct {
	config model.Neo4jConfig
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewNeo4jGraphStore creates the driver and verifies connectivity
func NewNeo4jGraphStore(ctx context.Context, config model.Neo4jConfig, logger *slog.Logger) (*Neo4jGraphStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	auth := neo4j.BasicAuth(config.Username, config.Password, "")
	driver, err := neo4j.NewDriverWithContext(config.URI, auth, func(c *neo4j.Config) {
		if config.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = config.MaxConnectionPoolSize
		}
		c.ConnectionAcquisitionTimeout = config.ConnectionTimeout
		c.SocketConnectTimeout = config.ConnectionTimeout
	})
	if err != nil {
		return nil, helper.NewError("create neo4j driver", err)
	}

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)
		return nil, helper.NewError("verify neo4j connectivity", err)
	}

	logger.Info("Connected to neo4j", slog.String("uri", config.URI))

	return &Neo4jGraphStore{
		config: config,
		driver: driver,
		logger: logger,
	}, nil
}

// MatchNodes searches the nodes of a label by substring
func (s *Neo4jGraphStore) MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error) {
	if !label.Valid() {
		return nil, helper.NewError(fmt.Sprintf("label %q", label), helper.ErrInvalidLabel)
	}

	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE toLower(coalesce(n.name, '')) CONTAINS toLower($term)
		   OR toLower(coalesce(n.ticker, '')) CONTAINS toLower($term)
		   OR toLower(coalesce(n.sector, '')) CONTAINS toLower($term)
		   OR toLower(coalesce(n.industry, '')) CONTAINS toLower($term)
		RETURN n
		LIMIT $limit`, label)

	records, err := s.read(ctx, cypher, map[string]any{"term": term, "limit": int64(limit)})
	if err != nil {
		return nil, helper.NewError("match nodes", err)
	}

	entities := make([]model.GraphEntity, 0, len(records))
	for _, record := range records {
		node, _, err := neo4j.GetRecordValue[neo4j.Node](record, "n")
		if err != nil {
			return nil, helper.NewError("read node", err)
		}
		attributes := make(map[string]interface{}, len(node.Props))
		for key, value := range node.Props {
			attributes[key] = value
		}
		entities = append(entities, model.GraphEntity{EntityType: label.String(), Attributes: attributes})
	}

	return entities, nil
}

// OutgoingEdges returns the one-hop edges of the matching nodes
func (s *Neo4jGraphStore) OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	if !label.Valid() {
		return nil, helper.NewError(fmt.Sprintf("label %q", label), helper.ErrInvalidLabel)
	}

	cypher := fmt.Sprintf(`
		MATCH (s:%s)-[r]->(t)
		WHERE s[$field] = $value
		RETURN toString(s[$field]) AS source,
		       type(r) AS relation,
		       coalesce(labels(t)[0], '') AS target_type,
		       coalesce(t.name, '') AS target
		LIMIT $limit`, label)

	records, err := s.read(ctx, cypher, map[string]any{"field": keyField, "value": keyValue, "limit": int64(limit)})
	if err != nil {
		return nil, helper.NewError("outgoing edges", err)
	}

	paths := make([]model.GraphPath, 0, len(records))
	for _, record := range records {
		var path model.GraphPath
		for key, target := range map[string]*string{
			"source":      &path.SourceKey,
			"relation":    &path.RelationType,
			"target_type": &path.TargetType,
			"target":      &path.TargetLabel,
		} {
			value, _, err := neo4j.GetRecordValue[string](record, key)
			if err != nil {
				return nil, helper.NewError("read "+key, err)
			}
			*target = value
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// UpsertNode merges a node keyed by name and sets props on it
func (s *Neo4jGraphStore) UpsertNode(ctx context.Context, label model.Label, name string, props map[string]interface{}) error {
	if !label.Valid() {
		return helper.NewError(fmt.Sprintf("label %q", label), helper.ErrInvalidLabel)
	}

	cypher := fmt.Sprintf(`MERGE (e:%s {name: $name}) SET e += $props`, label)
	err := s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		return run(ctx, tx, cypher, map[string]any{"name": name, "props": cleanProps(props)})
	})
	if err != nil {
		return helper.NewError("upsert node", err)
	}
	return nil
}

// UpsertEdge connects the nodes named sourceName and targetName whatever
// their label. Nothing is written if either node is missing.
func (s *Neo4jGraphStore) UpsertEdge(ctx context.Context, sourceName string, relation model.Label, targetName string, props map[string]interface{}) error {
	if !relation.Valid() {
		return helper.NewError(fmt.Sprintf("relation %q", relation), helper.ErrInvalidLabel)
	}

	cypher := fmt.Sprintf(`
		MATCH (s {name: $source})
		MATCH (t {name: $target})
		MERGE (s)-[r:%s]->(t)
		SET r += $props`, relation)
	err := s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		return run(ctx, tx, cypher, map[string]any{"source": sourceName, "target": targetName, "props": cleanProps(props)})
	})
	if err != nil {
		return helper.NewError("upsert edge", err)
	}
	return nil
}

// UpsertCompany merges a Company node keyed by ticker together with its
// Sector and Industry nodes in one transaction.
func (s *Neo4jGraphStore) UpsertCompany(ctx context.Context, company model.Company) error {
	err := company.Validate()
	if err != nil {
		return err
	}

	err = s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		err := run(ctx, tx, `
			MERGE (c:Company {ticker: $ticker})
			SET c += $props, c.updated_at = datetime()`,
			map[string]any{"ticker": company.Ticker, "props": cleanProps(company.Properties())},
		)
		if err != nil {
			return err
		}

		if sector := strings.TrimSpace(company.Sector); sector != "" {
			err = run(ctx, tx, `
				MATCH (c:Company {ticker: $ticker})
				MERGE (s:Sector {name: $name})
				MERGE (c)-[r:OPERATES_IN]->(s)
				SET r.updated_at = datetime()`,
				map[string]any{"ticker": company.Ticker, "name": sector},
			)
			if err != nil {
				return err
			}
		}

		if industry := strings.TrimSpace(company.Industry); industry != "" {
			err = run(ctx, tx, `
				MATCH (c:Company {ticker: $ticker})
				MERGE (i:Industry {name: $name})
				MERGE (c)-[r:BELONGS_TO]->(i)
				SET r.updated_at = datetime()`,
				map[string]any{"ticker": company.Ticker, "name": industry},
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return helper.NewError("upsert company", err)
	}

	s.logger.Info("Upserted company", slog.String("ticker", company.Ticker))

	return nil
}

// GetCompany returns the Company node of a ticker
func (s *Neo4jGraphStore) GetCompany(ctx context.Context, ticker string) (*model.GraphEntity, error) {
	records, err := s.read(ctx, `MATCH (c:Company {ticker: $ticker}) RETURN c LIMIT 1`, map[string]any{"ticker": ticker})
	if err != nil {
		return nil, helper.NewError("get company", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	node, _, err := neo4j.GetRecordValue[neo4j.Node](records[0], "c")
	if err != nil {
		return nil, helper.NewError("read node", err)
	}

	return &model.GraphEntity{EntityType: model.LabelCompany.String(), Attributes: node.Props}, nil
}

// Stats counts nodes, relationships and nodes per first label
func (s *Neo4jGraphStore) Stats(ctx context.Context) (*model.GraphStats, error) {
	stats := &model.GraphStats{NodeTypes: []model.NodeTypeCount{}}

	var err error
	stats.TotalNodes, err = s.count(ctx, `MATCH (n) RETURN count(n) AS count`)
	if err != nil {
		return nil, helper.NewError("count nodes", err)
	}

	stats.TotalRelations, err = s.count(ctx, `MATCH ()-[r]->() RETURN count(r) AS count`)
	if err != nil {
		return nil, helper.NewError("count relations", err)
	}

	records, err := s.read(ctx, `
		MATCH (n)
		RETURN coalesce(labels(n)[0], '') AS type, count(*) AS count
		ORDER BY count DESC`, nil)
	if err != nil {
		return nil, helper.NewError("count node types", err)
	}
	for _, record := range records {
		nodeType, _, err := neo4j.GetRecordValue[string](record, "type")
		if err != nil {
			return nil, helper.NewError("read type", err)
		}
		count, _, err := neo4j.GetRecordValue[int64](record, "count")
		if err != nil {
			return nil, helper.NewError("read count", err)
		}
		stats.NodeTypes = append(stats.NodeTypes, model.NodeTypeCount{Type: nodeType, Count: count})
	}

	return stats, nil
}

// Ping verifies the connectivity of the driver
func (s *Neo4jGraphStore) Ping(ctx context.Context) error {
	err := s.driver.VerifyConnectivity(ctx)
	if err != nil {
		return helper.NewError("verify neo4j connectivity", err)
	}
	return nil
}

// Close releases the driver and its connections
func (s *Neo4jGraphStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	if err != nil {
		return helper.NewError("close neo4j driver", err)
	}
	return nil
}

func (s *Neo4jGraphStore) count(ctx context.Context, cypher string) (int64, error) {
	records, err := s.read(ctx, cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	count, _, err := neo4j.GetRecordValue[int64](records[0], "count")
	return count, err
}

func (s *Neo4jGraphStore) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.config.Database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return neoResult.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.([]*neo4j.Record), nil
}

func (s *Neo4jGraphStore) write(ctx context.Context, work func(tx neo4j.ManagedTransaction) error) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.config.Database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(tx)
	})
	return err
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// cleanProps drops nil values, which Cypher SET would turn into removals
func cleanProps(props map[string]interface{}) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		if value == nil {
			continue
		}
		out[key] = value
	}
	return out
}
