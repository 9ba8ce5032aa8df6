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

// EntitiesDBHandlerFunctions defines the interface for graph node database operations.
type EntitiesDBHandlerFunctions interface {
	UpsertEntity(ctx context.Context, node *model.Node) error
	SelectEntity(ctx context.Context, label model.Label, key string) (*model.Node, error)
	SelectEntitiesBySearch(ctx context.Context, label model.Label, term string, limit int) ([]*model.Node, error)
	DeleteEntity(ctx context.Context, label model.Label, key string) error
	CountEntities(ctx context.Context) (int64, error)
	CountEntitiesByLabel(ctx context.Context) ([]model.NodeTypeCount, error)
}

// EntitiesDBHandler handles graph node database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// UpsertEntity inserts a node or merges its properties into the existing
// node with the same label and key.
func (h *EntitiesDBHandler) UpsertEntity(ctx context.Context, node *model.Node) error {
	if !node.Label.Valid() {
		return helper.NewError(fmt.Sprintf("label %q", node.Label), helper.ErrInvalidLabel)
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_entity($1, $2, $3)`,
		node.Label.String(),
		node.Key,
		node.Properties,
	)

	err := scanNode(row, node)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves a node by label and key
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, label model.Label, key string) (*model.Node, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity($1, $2)`,
		label.String(),
		key,
	)

	node := &model.Node{}
	err := scanNode(row, node)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return node, nil
}

// SelectEntitiesBySearch returns up to limit nodes of a label whose name,
// ticker, sector or industry contains term, case-insensitive.
func (h *EntitiesDBHandler) SelectEntitiesBySearch(ctx context.Context, label model.Label, term string, limit int) ([]*model.Node, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM search_entities($1, $2, $3)`,
		label.String(),
		term,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	for rows.Next() {
		node := &model.Node{}
		err := scanNode(rows, node)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// DeleteEntity deletes a node and its edges
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, label model.Label, key string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_entity($1, $2)`,
		label.String(),
		key,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// CountEntities returns the number of stored nodes
func (h *EntitiesDBHandler) CountEntities(ctx context.Context) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_entities()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// CountEntitiesByLabel returns the node count per label, largest first
func (h *EntitiesDBHandler) CountEntitiesByLabel(ctx context.Context) ([]model.NodeTypeCount, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM count_entities_by_label()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	counts := []model.NodeTypeCount{}
	for rows.Next() {
		var count model.NodeTypeCount
		err := rows.Scan(&count.Type, &count.Count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		counts = append(counts, count)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}

func scanNode(row rowScanner, node *model.Node) error {
	return row.Scan(
		&node.ID,
		&node.RID,
		&node.Label,
		&node.Key,
		&node.Properties,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
}
