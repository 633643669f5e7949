// Package chatbot implements the rule-based gift assistant as a pure state
// machine. Reduce takes the current state, the accumulated slots and one
// input, and returns the next state, slots and reply. It never touches a
// clock, a socket or the database.
package chatbot

import "github.com/giftchoice/storefront/internal/domain"

// State is the assistant's position in the conversation.
type State string

const (
	StateHidden       State = "hidden"
	StateGreeting     State = "greeting"
	StateIntro        State = "intro"
	StateConversation State = "conversation"
	StateSuggestion   State = "suggestion"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateHidden, StateGreeting, StateIntro, StateConversation, StateSuggestion:
		return true
	}
	return false
}

// Open reports whether the chat window is showing.
func (s State) Open() bool {
	return s == StateIntro || s == StateConversation || s == StateSuggestion
}

// InputKind names what happened.
type InputKind string

const (
	InputDelay  InputKind = "delay"
	InputScroll InputKind = "scroll"
	InputOpen   InputKind = "open"
	InputText   InputKind = "text"
	InputIdle   InputKind = "idle"
	InputClose  InputKind = "close"
)

// Input is one event fed to the reducer.
type Input struct {
	Kind InputKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}

// Context holds the slots collected so far.
type Context struct {
	Occasion    string   `json:"occasion,omitempty"`
	Recipient   string   `json:"recipient,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	Nudged      bool     `json:"nudged,omitempty"`
}

func (c Context) hasSlots() bool {
	return c.Occasion != "" || c.Recipient != "" || c.Budget != "" || len(c.Preferences) > 0
}

// Suggestion is the product card shown in the chat.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	Badge    string  `json:"badge,omitempty"`
	Featured bool    `json:"featured"`
}

func newSuggestion(p domain.Product) Suggestion {
	s := Suggestion{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.MinPrice(),
		Category: p.Category,
		Badge:    p.Badge,
		Featured: p.Featured,
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}

// Output is the assistant's reply to one input.
type Output struct {
	Messages     []string     `json:"messages"`
	Products     []Suggestion `json:"products"`
	QuickReplies []string     `json:"quick_replies"`
	WhatsAppURL  string       `json:"whatsapp_url,omitempty"`
}

func newOutput() Output {
	return Output{Messages: []string{}, Products: []Suggestion{}, QuickReplies: []string{}}
}

func (o *Output) say(messages ...string) {
	o.Messages = append(o.Messages, messages...)
}
