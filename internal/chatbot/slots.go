package chatbot

import (
	"strings"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/search"
)

// slotOption is one value of the occasion or recipient slot. Triggers are
// matched as whole words in what the shopper types; keywords are matched as
// substrings of product text.
type slotOption struct {
	Value    string
	Triggers []string
	Keywords []string
	Festival bool
}

var occasions = []slotOption{
	{Value: "Birthday", Triggers: []string{"birthday", "bday", "b day", "janamdin", "janmadin"},
		Keywords: []string{"birthday", "cake", "chocolate", "hamper", "treat", "party"}},
	{Value: "Anniversary", Triggers: []string{"anniversary", "saalgirah", "salgirah"},
		Keywords: []string{"anniversary", "couple", "rose", "love", "frame"}},
	{Value: "Wedding", Triggers: []string{"wedding", "shaadi", "shadi", "marriage", "vivah"},
		Keywords: []string{"wedding", "couple", "frame", "hamper"}},
	{Value: "Valentine", Triggers: []string{"valentine", "valentines", "valentine s", "propose", "romantic"},
		Keywords: []string{"rose", "love", "teddy", "heart", "chocolate"}},
	{Value: "Diwali", Triggers: []string{"diwali", "deepawali", "deepavali", "dhanteras"}, Festival: true,
		Keywords: []string{"diwali", "diya", "festive", "sweets"}},
	{Value: "Rakhi", Triggers: []string{"rakhi", "raksha bandhan", "rakshabandhan"}, Festival: true,
		Keywords: []string{"rakhi", "sweets", "brother"}},
	{Value: "Thank You", Triggers: []string{"thank you", "thanks", "thankyou", "shukriya", "dhanyavaad", "gratitude"},
		Keywords: []string{"thank", "hamper", "flower", "card"}},
	{Value: "Housewarming", Triggers: []string{"housewarming", "house warming", "griha pravesh", "new home", "new house"},
		Keywords: []string{"home", "decor", "plant", "candle", "frame"}},
}

var recipients = []slotOption{
	{Value: "Mom", Triggers: []string{"mom", "mother", "maa", "mummy", "mum", "mama"},
		Keywords: []string{"mom", "mother", "maa", "for her", "women", "flower"}},
	{Value: "Dad", Triggers: []string{"dad", "father", "papa", "daddy"},
		Keywords: []string{"dad", "father", "for men", "for him", "wallet", "watch"}},
	{Value: "Wife/Girlfriend", Triggers: []string{"wife", "girlfriend", "gf", "biwi", "patni", "fiancee"},
		Keywords: []string{"for her", "women", "rose", "jewellery", "love"}},
	{Value: "Husband/Boyfriend", Triggers: []string{"husband", "boyfriend", "bf", "pati", "fiance"},
		Keywords: []string{"for him", "for men", "wallet", "watch"}},
	{Value: "Friend", Triggers: []string{"friend", "friends", "dost", "bestie", "buddy"},
		Keywords: []string{"friend", "mug", "personalised", "fun"}},
	{Value: "Sibling", Triggers: []string{"brother", "sister", "bhai", "bhaiya", "behen", "didi", "sibling"},
		Keywords: []string{"brother", "sister", "rakhi", "sibling"}},
	{Value: "Kids", Triggers: []string{"kid", "kids", "child", "children", "son", "daughter", "baby", "bacche"},
		Keywords: []string{"kids", "toy", "teddy", "chocolate"}},
	{Value: "Colleague", Triggers: []string{"colleague", "coworker", "boss", "office", "team"},
		Keywords: []string{"office", "desk", "corporate", "mug", "pen"}},
}

// preferenceWords are product kinds a shopper may ask for by name.
var preferenceWords = []string{
	"chocolate", "chocolates", "flowers", "flower", "roses", "phool", "cake", "mug", "frame", "personalised",
	"personalized", "wallet", "watch", "hamper", "sweets", "mithai", "teddy", "jewellery", "plant", "candle",
	"perfume", "diya",
}

// Quick replies offered for each open slot.
var preferenceReplies = []string{"Chocolates", "Flowers", "Personalised", "Hampers"}

func optionValues(options []slotOption) []string {
	values := make([]string, len(options))
	for i, o := range options {
		values[i] = o.Value
	}
	return values
}

func matchOption(padded string, options []slotOption) (slotOption, bool) {
	for _, o := range options {
		if hasAnyWord(padded, o.Triggers) || hasWord(padded, strings.ToLower(o.Value)) {
			return o, true
		}
	}
	return slotOption{}, false
}

func findOption(value string, options []slotOption) (slotOption, bool) {
	for _, o := range options {
		if strings.EqualFold(o.Value, value) {
			return o, true
		}
	}
	return slotOption{}, false
}

// slots is what one message contributed.
type slots struct {
	occasion    string
	recipient   string
	budget      string
	preferences []string
}

func (s slots) empty() bool {
	return s.occasion == "" && s.recipient == "" && s.budget == "" && len(s.preferences) == 0
}

func extractSlots(text string) slots {
	var s slots
	padded := words(normalize(text))
	if o, ok := matchOption(padded, occasions); ok {
		s.occasion = o.Value
	}
	if o, ok := matchOption(padded, recipients); ok {
		s.recipient = o.Value
	}
	if b, ok := ExtractBudget(text); ok {
		s.budget = b.Label
	}
	for _, w := range preferenceWords {
		if hasWord(padded, w) {
			s.preferences = append(s.preferences, w)
		}
	}
	return s
}

// merge applies newly extracted slots over ctx. Later answers replace
// earlier ones; preferences accumulate.
func (s slots) merge(ctx Context) Context {
	if s.occasion != "" {
		ctx.Occasion = s.occasion
	}
	if s.recipient != "" {
		ctx.Recipient = s.recipient
	}
	if s.budget != "" {
		ctx.Budget = s.budget
	}
	for _, p := range s.preferences {
		if !contains(ctx.Preferences, p) {
			ctx.Preferences = append(ctx.Preferences, p)
		}
	}
	return ctx
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// productText is the lowercased text keyword filters look at.
func productText(p domain.Product) string {
	return strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Category, p.Subcategory, p.Badge}, " "))
}

func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// expandPreferences adds the search synonyms of each preference so that
// "phool" finds bouquets.
func expandPreferences(prefs []string) []string {
	var out []string
	for _, p := range prefs {
		out = append(out, p)
		out = append(out, search.Synonyms(p)...)
	}
	return out
}
