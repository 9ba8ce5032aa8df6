package retrieval

import (
	"strings"
	"unicode/utf8"
)

// stopwords holds English and French question words, articles,
// prepositions and generic domain nouns.
var stopwords = map[string]struct{}{}

func init() {
	for _, word := range strings.Fields(`
		what who where when why how is are was were the a an and or but in on at
		to for of with by about tell me show give explain describe company companies stock
		quel quelle quels quelles est sont le la les un une des du de et ou mais dans
		sur pour avec par entreprise entreprises`) {
		stopwords[word] = struct{}{}
	}
}

var punctuationReplacer = strings.NewReplacer("?", "", ",", "")

// ExtractKeywords returns the salient terms of a question in their order
// of appearance. Duplicates are kept.
func ExtractKeywords(question string) []string {
	words := strings.Fields(punctuationReplacer.Replace(strings.ToLower(question)))

	keywords := []string{}
	for _, word := range words {
		if _, ok := stopwords[word]; ok {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
