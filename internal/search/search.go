// Package search implements fuzzy product search with synonym expansion.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/giftchoice/storefront/internal/domain"
)

// Field weights. A perfect hit on a lighter field scores worse than one on
// the name.
const (
	weightName        = 1.0
	weightCategory    = 0.7
	weightBadge       = 0.6
	weightDescription = 0.5

	// Threshold is the worst product score still returned.
	Threshold = 0.6

	maxEditRatio   = 0.34
	substringScore = 0.1
	minFuzzyLength = 4
)

// Result is one matched product. Lower scores are better.
type Result struct {
	Product domain.Product `json:"product"`
	Score   float64        `json:"score"`
}

type field struct {
	text   string
	weight float64
}

// Search matches query against products and returns the hits ordered by
// score, then name, then id. Each product appears at most once.
func Search(query string, products []domain.Product) []Result {
	terms := Expand(query)
	if len(terms) == 0 {
		return []Result{}
	}

	best := make(map[string]Result)
	for _, p := range products {
		fields := []field{
			{normalize(p.Name), weightName},
			{normalize(p.Category + " " + p.Subcategory), weightCategory},
			{normalize(p.Badge), weightBadge},
			{normalize(p.Description), weightDescription},
		}
		score := 1.0
		for _, term := range terms {
			if s := productScore(term, fields); s < score {
				score = s
			}
		}
		if score > Threshold {
			continue
		}
		if prev, ok := best[p.ID]; !ok || score < prev.Score {
			best[p.ID] = Result{Product: p, Score: score}
		}
	}

	results := make([]Result, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Product.Name != b.Product.Name {
			return a.Product.Name < b.Product.Name
		}
		return a.Product.ID < b.Product.ID
	})
	return results
}

// Expand returns the normalized query, its synonyms and those of each token,
// without duplicates.
func Expand(query string) []string {
	q := normalize(query)
	if q == "" {
		return nil
	}

	seen := make(map[string]bool)
	var terms []string
	add := func(words ...string) {
		for _, w := range words {
			if w != "" && !seen[w] {
				seen[w] = true
				terms = append(terms, w)
			}
		}
	}

	add(q)
	add(synonyms[q]...)
	for _, tok := range strings.Fields(q) {
		if stopwords[tok] {
			continue
		}
		add(tok)
		add(synonyms[tok]...)
	}
	return terms
}

// stopwords are tokens too common to search for on their own.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "to": true, "of": true, "and": true, "or": true,
	"with": true, "in": true, "on": true, "me": true, "my": true, "i": true, "some": true, "please": true,
	"ke": true, "ka": true, "ki": true, "liye": true, "se": true,
}

func productScore(term string, fields []field) float64 {
	score := 1.0
	for _, f := range fields {
		s := 1 - f.weight*(1-fieldScore(term, f.text))
		if s < score {
			score = s
		}
	}
	return score
}

// fieldScore is 0 for a whole-word hit, 0.1 for a hit inside a word, the
// normalized edit distance for a close word window, and 1 otherwise.
func fieldScore(term, text string) float64 {
	if text == "" || term == "" {
		return 1
	}
	if strings.Contains(" "+text+" ", " "+term+" ") {
		return 0
	}
	if strings.Contains(text, term) {
		return substringScore
	}
	if utf8.RuneCountInString(term) < minFuzzyLength {
		return 1
	}

	words := strings.Fields(text)
	size := len(strings.Fields(term))
	if size > len(words) {
		size = len(words)
	}
	best := 1.0
	for i := 0; i+size <= len(words); i++ {
		window := strings.Join(words[i:i+size], " ")
		if d := editRatio(term, window); d < best {
			best = d
		}
	}
	if best <= maxEditRatio {
		return best
	}
	return 1
}

func editRatio(a, b string) float64 {
	longest := math.Max(float64(utf8.RuneCountInString(a)), float64(utf8.RuneCountInString(b)))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / longest
}

// normalize lowercases s, turns punctuation into spaces and collapses runs
// of whitespace. The rupee sign and digits survive.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '₹':
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
