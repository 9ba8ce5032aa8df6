package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	loadSql "github.com/siherrmann/fingrapher/sql"
)

// EdgesDBHandlerFunctions defines the interface for graph edge database operations.
type EdgesDBHandlerFunctions interface {
	UpsertEdgeByName(ctx context.Context, sourceName string, relation model.Label, targetName string, properties model.Metadata) (int, error)
	UpsertEdgeByKey(ctx context.Context, source model.NodeRef, relation model.Label, target model.NodeRef, properties model.Metadata) (int, error)
	SelectOutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error)
	CountEdges(ctx context.Context) (int64, error)
}

// EdgesDBHandler handles graph edge database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It initializes the database connection and loads edge-related SQL functions.
// The entities table has to exist before, edges reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'edges' table in the database.
// If the table already exists, it does not create it again.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_edges();`)
	if err != nil {
		log.Panicf("error initializing edges table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table edges")

	return nil
}

// UpsertEdgeByName connects the nodes named sourceName to the nodes named
// targetName, whatever their label. It returns the number of edges written,
// which is 0 when either side does not exist.
func (h *EdgesDBHandler) UpsertEdgeByName(ctx context.Context, sourceName string, relation model.Label, targetName string, properties model.Metadata) (int, error) {
	if !relation.Valid() {
		return 0, helper.NewError(fmt.Sprintf("relation %q", relation), helper.ErrInvalidLabel)
	}

	var written int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT upsert_edge_by_name($1, $2, $3, $4)`,
		sourceName,
		relation.String(),
		targetName,
		properties,
	).Scan(&written)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return written, nil
}

// UpsertEdgeByKey connects two nodes identified by label and key
func (h *EdgesDBHandler) UpsertEdgeByKey(ctx context.Context, source model.NodeRef, relation model.Label, target model.NodeRef, properties model.Metadata) (int, error) {
	if !relation.Valid() {
		return 0, helper.NewError(fmt.Sprintf("relation %q", relation), helper.ErrInvalidLabel)
	}

	var written int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT upsert_edge_by_key($1, $2, $3, $4, $5, $6)`,
		source.Label.String(),
		source.Key,
		relation.String(),
		target.Label.String(),
		target.Key,
		properties,
	).Scan(&written)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return written, nil
}

// SelectOutgoingEdges returns up to limit outgoing edges of the nodes of a
// label whose property keyField equals keyValue.
func (h *EdgesDBHandler) SelectOutgoingEdges(ctx context.Context, label model.Label, keyField string, keyValue string, limit int) ([]model.GraphPath, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_outgoing_edges($1, $2, $3, $4)`,
		label.String(),
		keyField,
		keyValue,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	paths := []model.GraphPath{}
	for rows.Next() {
		var path model.GraphPath
		err := rows.Scan(
			&path.SourceKey,
			&path.RelationType,
			&path.TargetType,
			&path.TargetLabel,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		paths = append(paths, path)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return paths, nil
}

// CountEdges returns the number of stored edges
func (h *EdgesDBHandler) CountEdges(ctx context.Context) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_edges()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
