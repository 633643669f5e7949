package chatbot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giftchoice/storefront/internal/checkout"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/search"
)

// Config configures an Engine.
type Config struct {
	StoreName      string
	WhatsAppNumber string
	// KnowledgeBase defaults to DefaultKnowledgeBase.
	KnowledgeBase *KnowledgeBase
}

// Engine holds the assistant's fixed copy and answers. It is safe for
// concurrent use.
type Engine struct {
	storeName      string
	whatsAppNumber string
	kb             *KnowledgeBase
}

// NewEngine creates an assistant.
func NewEngine(cfg Config) *Engine {
	if cfg.KnowledgeBase == nil {
		cfg.KnowledgeBase = DefaultKnowledgeBase
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "our store"
	}
	return &Engine{storeName: cfg.StoreName, whatsAppNumber: cfg.WhatsAppNumber, kb: cfg.KnowledgeBase}
}

var outOfScope = []string{
	"weather", "cricket", "football", "ipl", "sports", "politics", "election", "news", "movie", "movies",
	"stock market", "share market", "bitcoin", "crypto", "recipe", "homework", "joke", "horoscope",
}

var resetWords = []string{"start over", "restart", "reset"}

var (
	showMePrefix  = regexp.MustCompile(`^(?:please |pls )?(?:show me|show|search for|search|find me|find|dikhao|dikhaiye|dikha do)\s+(.+)$`)
	showMeSuffix  = regexp.MustCompile(`^(.+?)\s+(?:dikhao|dikhaiye|dikha do)$`)
	nudgeText     = "Hi! I need help choosing a gift."
	helpMeFindOne = "Help me find a gift"
)

// Reduce advances the assistant by one input.
func (e *Engine) Reduce(state State, ctx Context, in Input, catalog []domain.Product) (State, Context, Output) {
	out := newOutput()
	if !state.Valid() {
		state = StateHidden
	}

	switch in.Kind {
	case InputClose:
		return StateHidden, Context{}, out

	case InputDelay, InputScroll:
		if state != StateHidden {
			return state, ctx, out
		}
		out.say("Hi! Looking for the perfect gift? I can help you find one.")
		out.QuickReplies = []string{helpMeFindOne}
		return StateGreeting, ctx, out

	case InputOpen:
		if state.Open() {
			return state, ctx, out
		}
		e.intro(&out)
		return StateIntro, ctx, out

	case InputIdle:
		if !state.Open() || ctx.Nudged {
			return state, ctx, out
		}
		ctx.Nudged = true
		out.say("Still deciding? Chat with us on WhatsApp and we'll help you pick.")
		out.WhatsAppURL = checkout.WhatsAppLink(e.whatsAppNumber, nudgeText)
		return state, ctx, out

	case InputText:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return state, ctx, out
		}
		if !state.Open() {
			e.intro(&out)
			state = StateIntro
		}
		return e.respond(state, ctx, text, catalog, out)
	}
	return state, ctx, out
}

func (e *Engine) intro(out *Output) {
	out.say(
		fmt.Sprintf("Welcome to %s! I'm your gift assistant.", e.storeName),
		"What's the occasion you're shopping for?",
	)
	out.QuickReplies = optionValues(occasions)
}

func (e *Engine) respond(state State, ctx Context, text string, catalog []domain.Product, out Output) (State, Context, Output) {
	next := state
	if next == StateIntro {
		next = StateConversation
	}
	padded := words(normalize(text))

	if hasAnyWord(padded, outOfScope) {
		out.say(fmt.Sprintf("I can only help with gifts and orders at %s. Shall we find something special?", e.storeName))
		out.QuickReplies = []string{helpMeFindOne}
		return StateConversation, ctx, out
	}

	if hasAnyWord(padded, resetWords) || strings.EqualFold(text, helpMeFindOne) {
		ctx = Context{Nudged: ctx.Nudged}
		out.say("Sure! What's the occasion?")
		out.QuickReplies = optionValues(occasions)
		return StateConversation, ctx, out
	}

	if topic, ok := e.kb.Match(text); ok {
		out.say(topic.Answer)
		if topic.WhatsApp {
			out.WhatsAppURL = checkout.WhatsAppLink(e.whatsAppNumber, nudgeText)
		}
		return next, ctx, out
	}

	if query := showMeQuery(text); query != "" {
		results := search.Search(query, inStock(catalog))
		if len(results) > 0 {
			out.say(fmt.Sprintf("Here's what I found for \"%s\":", query))
			for i, r := range results {
				if i == MaxSuggestions {
					break
				}
				out.Products = append(out.Products, newSuggestion(r.Product))
			}
			return StateSuggestion, ctx, out
		}
		out.say(fmt.Sprintf("I couldn't find anything for \"%s\".", query))
	}

	found := extractSlots(text)
	if found.empty() {
		question, replies := e.followUp(ctx)
		out.say(question)
		out.QuickReplies = replies
		return StateConversation, ctx, out
	}

	ctx = found.merge(ctx)
	products, widened := Suggest(ctx, catalog)
	if len(products) == 0 {
		out.say("I couldn't find a gift that fits all of that. Could you try a different budget or occasion?")
		out.QuickReplies = BudgetLabels()
		return StateConversation, ctx, out
	}

	if widened {
		out.say(fmt.Sprintf("Nothing fit %s exactly, so I stretched the budget a little.", ctx.Budget))
	}
	out.say(picksHeading(ctx))
	for _, p := range products {
		out.Products = append(out.Products, newSuggestion(p))
	}
	if question, replies, ok := nextQuestion(ctx); ok {
		out.say(question)
		out.QuickReplies = replies
	}
	return StateSuggestion, ctx, out
}

// followUp asks for the first missing slot, or for a rephrase when all are
// filled.
func (e *Engine) followUp(ctx Context) (string, []string) {
	if question, replies, ok := nextQuestion(ctx); ok {
		return question, replies
	}
	return "Sorry, I didn't catch that. Could you tell me a bit more about the gift you have in mind?", []string{}
}

// nextQuestion picks the first missing slot in the order occasion,
// recipient, budget, preference.
func nextQuestion(ctx Context) (string, []string, bool) {
	switch {
	case ctx.Occasion == "":
		return "What's the occasion you're shopping for?", optionValues(occasions), true
	case ctx.Recipient == "":
		return "Who is the gift for?", optionValues(recipients), true
	case ctx.Budget == "":
		return "What budget do you have in mind?", BudgetLabels(), true
	case len(ctx.Preferences) == 0:
		return "Do they have a favourite? Chocolates or flowers, maybe?", preferenceReplies, true
	}
	return "", nil, false
}

func picksHeading(ctx Context) string {
	var b strings.Builder
	b.WriteString("Here are some ")
	if ctx.Occasion != "" {
		b.WriteString(ctx.Occasion + " ")
	}
	b.WriteString("gift ideas")
	if ctx.Recipient != "" {
		b.WriteString(" for your " + strings.ToLower(ctx.Recipient))
	}
	if ctx.Budget != "" {
		b.WriteString(" (" + ctx.Budget + ")")
	}
	b.WriteString(":")
	return b.String()
}

func showMeQuery(text string) string {
	t := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if m := showMePrefix.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := showMeSuffix.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func inStock(catalog []domain.Product) []domain.Product {
	return filter(catalog, func(p domain.Product) bool { return p.InStock })
}
