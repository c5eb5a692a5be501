package memory

import (
	"math"
	"strings"
)

// Stop words ignored when matching query text against assets.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '_' || r == '/'
	})
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// wordSet indexes the filtered words of every text.
func wordSet(texts ...string) map[string]bool {
	set := make(map[string]bool)
	for _, text := range texts {
		for _, word := range tokenizeAndFilter(text) {
			set[word] = true
		}
	}
	return set
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document string, queryWords []string) bool {
	if len(queryWords) == 0 {
		return false
	}
	docWords := wordSet(document)
	for _, qWord := range queryWords {
		if !docWords[qWord] {
			return false
		}
	}
	return true
}

// matchedWords returns the query words that are a word, or a prefix of a
// word, in the document set.
func matchedWords(doc map[string]bool, queryWords []string) []string {
	var matched []string
	for _, q := range queryWords {
		if doc[q] {
			matched = append(matched, q)
			continue
		}
		for word := range doc {
			if strings.HasPrefix(word, q) {
				matched = append(matched, q)
				break
			}
		}
	}
	return matched
}

// highlight wraps every word of text that matches a query word in <em> tags.
func highlight(text string, queryWords []string) (string, bool) {
	if text == "" {
		return "", false
	}
	words := strings.Fields(text)
	found := false
	for i, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		for _, q := range queryWords {
			if strings.HasPrefix(cleaned, q) {
				words[i] = "<em>" + word + "</em>"
				found = true
				break
			}
		}
	}
	return strings.Join(words, " "), found
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// cosineSimilarity normalizes the dot product by both vector lengths.
func cosineSimilarity(a, b []float32) float32 {
	na := math.Sqrt(float64(dotProduct(a, a)))
	nb := math.Sqrt(float64(dotProduct(b, b)))
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(float64(dotProduct(a, b)) / (na * nb))
}
