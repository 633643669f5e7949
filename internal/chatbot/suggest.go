package chatbot

import (
	"sort"

	"github.com/giftchoice/storefront/internal/domain"
)

// MaxSuggestions caps how many products one reply shows.
const MaxSuggestions = 4

// Suggest filters the in-stock catalog by the collected slots and ranks the
// survivors featured first, then cheapest first, then by name. Keyword
// filters are soft: one that would leave nothing is skipped. The budget is
// a hard bound on the cheapest variant; when it leaves nothing, the band is
// widened once. widened reports whether that happened.
func Suggest(ctx Context, catalog []domain.Product) (products []domain.Product, widened bool) {
	candidates := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if p.InStock {
			candidates = append(candidates, p)
		}
	}

	if o, ok := findOption(ctx.Occasion, occasions); ok {
		candidates = softFilter(candidates, func(p domain.Product) bool {
			return (o.Festival && p.Festival) || matchesAny(productText(p), o.Keywords)
		})
	}
	if o, ok := findOption(ctx.Recipient, recipients); ok {
		candidates = softFilter(candidates, func(p domain.Product) bool {
			return matchesAny(productText(p), o.Keywords)
		})
	}
	if len(ctx.Preferences) > 0 {
		prefs := expandPreferences(ctx.Preferences)
		candidates = softFilter(candidates, func(p domain.Product) bool {
			return matchesAny(productText(p), prefs)
		})
	}

	if budget, ok := ParseBudget(ctx.Budget); ok {
		strict := filter(candidates, func(p domain.Product) bool { return budget.Contains(p.MinPrice()) })
		if len(strict) == 0 {
			wide := budget.Widen(widenBy)
			strict = filter(candidates, func(p domain.Product) bool { return wide.Contains(p.MinPrice()) })
			widened = len(strict) > 0
		}
		candidates = strict
	}

	rank(candidates)
	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates, widened
}

func filter(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func softFilter(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	if out := filter(products, keep); len(out) > 0 {
		return out
	}
	return products
}

func rank(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if pa, pb := a.MinPrice(), b.MinPrice(); pa != pb {
			return pa < pb
		}
		return a.Name < b.Name
	})
}
