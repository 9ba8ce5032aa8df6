package pipeline

import (
	"strings"
	"unicode"

	"github.com/siherrmann/fingrapher/model"
)

// DocumentPath builds the base chunk path of a document from its ticker and
// section, for example "aapl.risk_factors".
func DocumentPath(doc *model.Document) string {
	parts := []string{}
	for _, part := range []string{doc.Ticker, doc.Section} {
		if label := pathLabel(part); label != "" {
			parts = append(parts, label)
		}
	}
	if len(parts) == 0 {
		return "doc"
	}
	return strings.Join(parts, ".")
}

// pathLabel lower-cases s and replaces every run of characters that are
// not letters or digits with a single underscore.
func pathLabel(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteRune('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
