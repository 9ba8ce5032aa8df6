package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/fingrapher/helper"
)

// Label is a node label or relationship type that is safe to use as a graph identifier.
// Only values created through NewLabel, NewEntityLabel or NormalizeRelation are valid.
type Label string

const (
	LabelCompany  Label = "Company"
	LabelSector   Label = "Sector"
	LabelIndustry Label = "Industry"
	LabelEntity   Label = "Entity"

	RelationRelatedTo  Label = "RELATED_TO"
	RelationOperatesIn Label = "OPERATES_IN"
	RelationBelongsTo  Label = "BELONGS_TO"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// NewLabel validates raw against the identifier allow-list
func NewLabel(raw string) (Label, error) {
	if !labelPattern.MatchString(raw) {
		return "", helper.NewError(fmt.Sprintf("label %q", raw), helper.ErrInvalidLabel)
	}
	return Label(raw), nil
}

// NewEntityLabel validates an extracted entity type, defaulting to Entity when blank
func NewEntityLabel(raw string) (Label, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LabelEntity, nil
	}
	return NewLabel(raw)
}

// NormalizeRelation upper-cases raw and replaces spaces with underscores
// before validating it. A blank relation becomes RELATED_TO.
func NormalizeRelation(raw string) (Label, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RelationRelatedTo, nil
	}
	return NewLabel(strings.ReplaceAll(strings.ToUpper(raw), " ", "_"))
}

// String returns the label text
func (l Label) String() string {
	return string(l)
}

// Valid reports whether the label matches the identifier allow-list
func (l Label) Valid() bool {
	return labelPattern.MatchString(string(l))
}
