package chatbot

import (
	"regexp"
	"strconv"
	"strings"
)

// minBudget filters out numbers that are quantities ("2 mugs") rather than
// amounts.
const minBudget = 50

// widenBy is how far a budget stretches when nothing fits it exactly.
const widenBy = 200

// Budget is a price range. Open budgets have no upper bound; Below
// budgets exclude Max itself.
type Budget struct {
	Label string
	Min   float64
	Max   float64
	Open  bool
	Below bool
}

// Contains reports whether price falls inside the range.
func (b Budget) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	switch {
	case b.Open:
		return true
	case b.Below:
		return price < b.Max
	default:
		return price <= b.Max
	}
}

// Widen stretches the range by d on both sides, never below zero.
func (b Budget) Widen(d float64) Budget {
	b.Min -= d
	if b.Min < 0 {
		b.Min = 0
	}
	if !b.Open {
		b.Max += d
	}
	return b
}

var bands = []Budget{
	{Label: "Under ₹500", Min: 0, Max: 500},
	{Label: "₹500–₹999", Min: 500, Max: 1000, Below: true},
	{Label: "₹1000–₹1999", Min: 1000, Max: 2000, Below: true},
	{Label: "₹2000 & Above", Min: 2000, Open: true},
}

// BudgetLabels lists the fixed bands, cheapest first.
func BudgetLabels() []string {
	labels := make([]string, len(bands))
	for i, b := range bands {
		labels[i] = b.Label
	}
	return labels
}

func bandFor(n float64) Budget {
	switch {
	case n < 500:
		return bands[0]
	case n < 1000:
		return bands[1]
	case n < 2000:
		return bands[2]
	default:
		return bands[3]
	}
}

var upperBoundWords = []string{
	"under", "below", "less than", "within", "upto", "up to", "max", "maximum",
	"not more than", "andar", "tak", "se kam", "neeche",
}

var (
	groupedDigits = regexp.MustCompile(`\d{1,3}(?:,\d{2,3})+`)
	amountRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)(k)?(\s?(?:rs|rupees?))?\b`)
	yearRe        = regexp.MustCompile(`^(?:19|20)\d\d$`)
	rangeRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)(k)?\s*(?:-|–|to)\s*(?:₹\s?|rs\.?\s?)?(\d+(?:\.\d+)?)(k)?\b`)

	underLabel = regexp.MustCompile(`(?i)^under ₹(\d+(?:\.\d+)?)$`)
	rangeLabel = regexp.MustCompile(`^₹(\d+(?:\.\d+)?)\s*[–-]\s*₹(\d+(?:\.\d+)?)$`)
	aboveLabel = regexp.MustCompile(`(?i)^₹(\d+(?:\.\d+)?) & above$`)
)

// ExtractBudget finds a budget in free text. "500 ke andar" and "under 1k"
// are upper bounds, "800-1200" is a range, and a bare amount falls into one
// of the fixed bands.
func ExtractBudget(text string) (Budget, bool) {
	t := groupedDigits.ReplaceAllStringFunc(normalize(text), func(s string) string {
		return strings.ReplaceAll(s, ",", "")
	})

	if m := rangeRe.FindStringSubmatch(t); m != nil {
		lo, hi := amount(m[1], m[2]), amount(m[3], m[4])
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo >= minBudget && hi >= minBudget {
			return Budget{Label: "₹" + formatAmount(lo) + "–₹" + formatAmount(hi), Min: lo, Max: hi}, true
		}
	}

	var n float64
	found := false
	for _, m := range amountRe.FindAllStringSubmatchIndex(t, -1) {
		digits, k := t[m[2]:m[3]], ""
		if m[4] >= 0 {
			k = t[m[4]:m[5]]
		}
		if k == "" && m[6] < 0 && yearRe.MatchString(digits) && !nearBudgetWord(t[:m[0]], t[m[1]:]) {
			continue
		}
		if v := amount(digits, k); v >= minBudget {
			n, found = v, true
			break
		}
	}
	if !found {
		return Budget{}, false
	}

	if hasAnyWord(words(t), upperBoundWords) {
		return Budget{Label: "Under ₹" + formatAmount(n), Max: n}, true
	}
	return bandFor(n), true
}

// A year-like number ("2025") is only an amount right after one of
// markersBefore or right before one of markersAfter.
var (
	markersBefore = append([]string{"₹", "rs", "rs.", "rupees", "budget", "budget is", "around", "about"}, upperBoundWords...)
	markersAfter  = []string{"tak", "andar", "ke andar", "se kam", "neeche"}
)

func nearBudgetWord(before, after string) bool {
	before, after = strings.TrimSpace(before), strings.TrimSpace(after)
	for _, w := range markersBefore {
		if before == w || strings.HasSuffix(before, " "+w) {
			return true
		}
	}
	for _, w := range markersAfter {
		if after == w || strings.HasPrefix(after, w+" ") {
			return true
		}
	}
	return false
}

// ParseBudget turns a label produced by ExtractBudget back into a range.
func ParseBudget(label string) (Budget, bool) {
	label = strings.TrimSpace(label)
	for _, b := range bands {
		if b.Label == label {
			return b, true
		}
	}
	if m := underLabel.FindStringSubmatch(label); m != nil {
		return Budget{Label: label, Max: amount(m[1], "")}, true
	}
	if m := rangeLabel.FindStringSubmatch(label); m != nil {
		return Budget{Label: label, Min: amount(m[1], ""), Max: amount(m[2], "")}, true
	}
	if m := aboveLabel.FindStringSubmatch(label); m != nil {
		return Budget{Label: label, Min: amount(m[1], ""), Open: true}, true
	}
	return Budget{}, false
}

func amount(digits, k string) float64 {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	if k != "" {
		v *= 1000
	}
	return v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
