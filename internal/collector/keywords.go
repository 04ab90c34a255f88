package collector

import (
	"regexp"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// keywordPattern matches any vocabulary keyword as a whole word, ignoring case
var keywordPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(models.Keywords, "|") + `)\b`)

// CountKeywords counts whole-word, case-insensitive occurrences of the
// keyword vocabulary anywhere in text.
func CountKeywords(text string) models.KeywordCounts {
	counts := models.NewKeywordCounts()
	for _, m := range keywordPattern.FindAllString(text, -1) {
		counts.Add(m)
	}
	return counts
}

// CountTokens adds a status token and a severity token taken from one
// table row to counts.
func CountTokens(counts models.KeywordCounts, status, severity string) {
	counts.Add(status)
	counts.Add(severity)
}
