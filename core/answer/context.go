package answer

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// Context budgets, in runes
const (
	MaxEvidenceRunes    = 1500
	MaxDescriptionRunes = 500
	MaxContextEntities  = 5
)

// Context zone headers
const (
	DocumentContextHeader = "=== DOCUMENT CONTEXT ==="
	GraphContextHeader    = "=== KNOWLEDGE GRAPH CONTEXT ==="
)

// BuildContext merges vector evidence and graph entities into one text
// block. Only Company entities among the first MaxContextEntities are
// rendered. Both inputs empty give an empty string.
func BuildContext(evidence []model.VectorEvidence, entities []model.GraphEntity) string {
	parts := []string{}

	if len(evidence) > 0 {
		parts = append(parts, DocumentContextHeader)
		for i, item := range evidence {
			parts = append(parts, fmt.Sprintf("\n[Source %d: %s]", i+1, sourceLabel(item.Metadata)))
			parts = append(parts, helper.Truncate(item.Content, MaxEvidenceRunes))
		}
	}

	if len(entities) > 0 {
		parts = append(parts, "\n\n"+GraphContextHeader)
		if len(entities) > MaxContextEntities {
			entities = entities[:MaxContextEntities]
		}
		for _, entity := range entities {
			if entity.EntityType != model.LabelCompany.String() {
				continue
			}
			parts = append(parts, companyLines(entity)...)
		}
	}

	return strings.Join(parts, "\n")
}

// sourceLabel is the ticker, else the section, else "unknown"
func sourceLabel(metadata map[string]string) string {
	if ticker, ok := metadata["ticker"]; ok {
		return ticker
	}
	if section, ok := metadata["section"]; ok {
		return section
	}
	return "unknown"
}

func companyLines(entity model.GraphEntity) []string {
	lines := []string{
		"\nCompany: " + attrOr(entity, "name", "N/A"),
		"  Ticker: " + attrOr(entity, "ticker", "N/A"),
		"  Sector: " + attrOr(entity, "sector", "N/A"),
		"  Industry: " + attrOr(entity, "industry", "N/A"),
	}

	if description := entity.Attr("description"); description != "" {
		lines = append(lines, "  Description: "+helper.Truncate(description, MaxDescriptionRunes))
	}
	if marketCap, ok := figure(entity, "market_cap"); ok {
		lines = append(lines, "  Market Cap: "+marketCap)
	}
	if revenue, ok := figure(entity, "revenue"); ok {
		lines = append(lines, "  Revenue: "+revenue)
	}

	return lines
}

func attrOr(entity model.GraphEntity, key string, fallback string) string {
	if value, ok := entity.Attributes[key]; !ok || value == nil {
		return fallback
	}
	return entity.Attr(key)
}

// figure formats a present, finite and non-zero amount as "$1,234,567"
func figure(entity model.GraphEntity, key string) (string, bool) {
	value, ok := entity.Float(key)
	if !ok || value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return "", false
	}
	return "$" + humanize.Commaf(math.Round(value)), true
}
