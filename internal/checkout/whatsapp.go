// Package checkout renders orders into the WhatsApp handoff message.
package checkout

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/giftchoice/storefront/internal/domain"
)

// Summary renders the order as the text the customer sends on WhatsApp.
func Summary(storeName string, order *domain.Order) string {
	var b strings.Builder
	if storeName != "" {
		fmt.Fprintf(&b, "Hi %s! I'd like to place an order:\n\n", storeName)
	}

	total := decimal.Zero
	for i, it := range order.Items {
		line := domain.LineTotal(it.UnitPrice, it.Quantity)
		total = total.Add(line)
		name := it.ProductName
		if it.SizeName != "" {
			name += " (" + it.SizeName + ")"
		}
		fmt.Fprintf(&b, "%d. %s x%d = %s\n", i+1, name, it.Quantity, domain.Rupees(line))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", domain.Rupees(total))

	fmt.Fprintf(&b, "\nName: %s\nPhone: %s", order.CustomerName, order.CustomerPhone)
	if order.CustomerEmail != "" {
		fmt.Fprintf(&b, "\nEmail: %s", order.CustomerEmail)
	}
	if order.ID != "" {
		fmt.Fprintf(&b, "\nOrder ID: %s", order.ID)
	}
	return b.String()
}

// WhatsAppLink builds a wa.me deep link. Everything but digits is dropped
// from number.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
