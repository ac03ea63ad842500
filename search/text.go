package search

import "strings"

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryTerms checks if all query terms (after filtering) appear in the segment
func containsAllQueryTerms(segment, query string) bool {
	queryTerms := tokenizeAndFilter(query)
	if len(queryTerms) == 0 {
		return false
	}

	segmentWords := tokenizeAndFilter(segment)
	segmentWordSet := make(map[string]bool, len(segmentWords))
	for _, word := range segmentWords {
		segmentWordSet[word] = true
	}

	for _, term := range queryTerms {
		if !segmentWordSet[term] {
			return false
		}
	}

	return true
}
