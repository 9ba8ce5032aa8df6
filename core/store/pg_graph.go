package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/fingrapher/database"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// PostgresGraphStore keeps the property graph in the entities and edges tables
type PostgresGraphStore struct {
	db       *helper.Database
	entities *database.EntitiesDBHandler
	edges    *database.EdgesDBHandler
	logger   *slog.Logger
}

// NewPostgresGraphStore creates the entity and edge handlers on db
func NewPostgresGraphStore(db *helper.Database, force bool) (*PostgresGraphStore, error) {
	entities, err := database.NewEntitiesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	return &PostgresGraphStore{
		db:       db,
		entities: entities,
		edges:    edges,
		logger:   db.Logger,
	}, nil
}

// MatchNodes searches the nodes of a label by substring
func (s *PostgresGraphStore) MatchNodes(ctx context.Context, label model.Label, term string, limit int) ([]model.GraphEntity, error) {
	nodes, err := s.entities.SelectEntitiesBySearch(ctx, label, term, limit)
	if err != nil {
		return nil, helper.NewError("select entities by search", err)
	}

	entities := make([]model.GraphEntity, 0, len(nodes))
	for _, node := range nodes {
		entities = append(entities, node.Entity())
	}
	return entities, nil
}

// OutgoingEdges returns the one-hop edges of the matching nodes
func (s *PostgresGraphStore) OutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	paths, err := s.edges.SelectOutgoingEdges(ctx, label, keyField, keyValue, limit)
	if err != nil {
		return nil, helper.NewError("select outgoing edges", err)
	}
	return paths, nil
}

// UpsertNode merges a node keyed by name into the graph. Existing
// properties not in props are kept.
func (s *PostgresGraphStore) UpsertNode(ctx context.Context, label model.Label, name string, props map[string]interface{}) error {
	properties := model.Metadata{}
	for key, value := range props {
		properties[key] = value
	}
	properties["name"] = name

	err := s.entities.UpsertEntity(ctx, &model.Node{
		Label:      label,
		Key:        name,
		Properties: properties,
	})
	if err != nil {
		return helper.NewError("upsert entity", err)
	}
	return nil
}

// UpsertEdge connects the nodes named sourceName and targetName whatever
// their label. Nothing is written if either node is missing.
func (s *PostgresGraphStore) UpsertEdge(ctx context.Context, sourceName string, relation model.Label, targetName string, props map[string]interface{}) error {
	written, err := s.edges.UpsertEdgeByName(ctx, sourceName, relation, targetName, model.Metadata(props))
	if err != nil {
		return helper.NewError("upsert edge by name", err)
	}
	if written == 0 {
		s.logger.Debug("No edge written, node missing", slog.String("source", sourceName), slog.String("relation", relation.String()), slog.String("target", targetName))
	}
	return nil
}

// UpsertCompany merges a Company node keyed by ticker. A non-empty sector
// or industry is merged as its own node and linked with OPERATES_IN or
// BELONGS_TO.
func (s *PostgresGraphStore) UpsertCompany(ctx context.Context, company model.Company) error {
	err := company.Validate()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	properties := model.Metadata(company.Properties())
	properties["updated_at"] = now

	companyRef := model.NodeRef{Label: model.LabelCompany, Key: company.Ticker}
	err = s.entities.UpsertEntity(ctx, &model.Node{
		Label:      companyRef.Label,
		Key:        companyRef.Key,
		Properties: properties,
	})
	if err != nil {
		return helper.NewError("upsert company", err)
	}

	links := []struct {
		label    model.Label
		relation model.Label
		name     string
	}{
		{model.LabelSector, model.RelationOperatesIn, strings.TrimSpace(company.Sector)},
		{model.LabelIndustry, model.RelationBelongsTo, strings.TrimSpace(company.Industry)},
	}
	for _, link := range links {
		if link.name == "" {
			continue
		}

		target := model.NodeRef{Label: link.label, Key: link.name}
		err = s.entities.UpsertEntity(ctx, &model.Node{
			Label:      target.Label,
			Key:        target.Key,
			Properties: model.Metadata{"name": link.name},
		})
		if err != nil {
			return helper.NewError("upsert "+strings.ToLower(link.label.String()), err)
		}

		_, err = s.edges.UpsertEdgeByKey(ctx, companyRef, link.relation, target, model.Metadata{"updated_at": now})
		if err != nil {
			return helper.NewError("upsert "+link.relation.String(), err)
		}
	}

	s.logger.Info("Upserted company", slog.String("ticker", company.Ticker))

	return nil
}

// GetCompany returns the Company node of a ticker
func (s *PostgresGraphStore) GetCompany(ctx context.Context, ticker string) (*model.GraphEntity, error) {
	node, err := s.entities.SelectEntity(ctx, model.LabelCompany, ticker)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, helper.NewError("select entity", err)
	}

	entity := node.Entity()
	return &entity, nil
}

// Stats counts nodes, edges and nodes per label
func (s *PostgresGraphStore) Stats(ctx context.Context) (*model.GraphStats, error) {
	nodes, err := s.entities.CountEntities(ctx)
	if err != nil {
		return nil, helper.NewError("count entities", err)
	}

	relations, err := s.edges.CountEdges(ctx)
	if err != nil {
		return nil, helper.NewError("count edges", err)
	}

	nodeTypes, err := s.entities.CountEntitiesByLabel(ctx)
	if err != nil {
		return nil, helper.NewError("count entities by label", err)
	}

	return &model.GraphStats{
		TotalNodes:     nodes,
		TotalRelations: relations,
		NodeTypes:      nodeTypes,
	}, nil
}

// Ping checks the database connection
func (s *PostgresGraphStore) Ping(ctx context.Context) error {
	err := s.db.Instance.PingContext(ctx)
	if err != nil {
		return helper.NewError("ping", err)
	}
	return nil
}

// Close does nothing, the connection pool belongs to the caller
func (s *PostgresGraphStore) Close(ctx context.Context) error {
	return nil
}
