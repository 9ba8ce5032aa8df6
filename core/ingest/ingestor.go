package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/fingrapher/core/store"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// Failure kinds
const (
	KindEntity   = "entity"
	KindRelation = "relation"
)

const defaultSourceName = "unknown"

// Ingestor merges extracted entities and relations into the graph
type Ingestor struct {
	writer store.GraphWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewIngestor creates an ingestor writing to writer. A nil writer makes
// every merge fail with helper.ErrGraphUnavailable.
func NewIngestor(writer store.GraphWriter, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// MergeExtractions upserts every named entity as a node labelled with its
// type and every relation with both ends named as an edge. A rejected item
// is recorded in the failures and the batch goes on. Counts are attempted
// merges, so an item merged twice counts twice.
func (i *Ingestor) MergeExtractions(ctx context.Context, extractions []model.Extraction) (*model.MergeStats, error) {
	if i.writer == nil {
		return nil, helper.ErrGraphUnavailable
	}

	stats := &model.MergeStats{}
	for _, extraction := range extractions {
		source := strings.TrimSpace(extraction.SourceName)
		if source == "" {
			source = defaultSourceName
		}

		for _, entity := range extraction.Entities {
			i.mergeEntity(ctx, source, entity, stats)
		}
		for _, relation := range extraction.Relations {
			i.mergeRelation(ctx, source, relation, stats)
		}
	}

	i.logger.Info(
		"Merged extractions",
		slog.Int("extractions", len(extractions)),
		slog.Int("entities_added", stats.EntitiesAdded),
		slog.Int("relations_added", stats.RelationsAdded),
		slog.Int("failures", len(stats.Failures)),
	)

	return stats, nil
}

func (i *Ingestor) mergeEntity(ctx context.Context, source string, entity model.ExtractedEntity, stats *model.MergeStats) {
	name := strings.TrimSpace(entity.Name)
	if name == "" {
		return
	}

	label, err := model.NewEntityLabel(entity.Type)
	if err == nil {
		err = i.writer.UpsertNode(ctx, label, name, map[string]interface{}{
			"source":     source,
			"updated_at": i.timestamp(),
		})
	}
	if err != nil {
		stats.Failures = append(stats.Failures, failure(source, KindEntity, name, err))
		return
	}

	stats.EntitiesAdded++
}

func (i *Ingestor) mergeRelation(ctx context.Context, source string, relation model.ExtractedRelation, stats *model.MergeStats) {
	sourceName := strings.TrimSpace(relation.SourceName)
	targetName := strings.TrimSpace(relation.TargetName)
	if sourceName == "" || targetName == "" {
		return
	}

	label, err := model.NormalizeRelation(relation.RelationType)
	if err == nil {
		err = i.writer.UpsertEdge(ctx, sourceName, label, targetName, map[string]interface{}{
			"updated_at": i.timestamp(),
		})
	}
	if err != nil {
		item := fmt.Sprintf("%s -[%s]-> %s", sourceName, relation.RelationType, targetName)
		stats.Failures = append(stats.Failures, failure(source, KindRelation, item, err))
		return
	}

	stats.RelationsAdded++
}

func (i *Ingestor) timestamp() string {
	return i.now().UTC().Format(time.RFC3339)
}

func failure(source string, kind string, item string, err error) model.MergeFailure {
	return model.MergeFailure{
		SourceName: source,
		Kind:       kind,
		Item:       item,
		Error:      err.Error(),
	}
}
