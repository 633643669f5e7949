package chatbot

import (
	"fmt"
	"strings"
	"sync"
)

// Topic is a fixed answer returned when any trigger appears in the message.
type Topic struct {
	Name     string
	Triggers []string
	Answer   string
	// WhatsApp attaches the store's chat link to the answer.
	WhatsApp bool
}

// KnowledgeBase stores topics in registration order; the first match wins.
type KnowledgeBase struct {
	mu     sync.RWMutex
	topics []Topic
	names  map[string]bool
}

// DefaultKnowledgeBase is the shared knowledge base used by the assistant.
var DefaultKnowledgeBase = NewKnowledgeBase()

// NewKnowledgeBase creates an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{names: make(map[string]bool)}
}

// Register adds a topic.
func (kb *KnowledgeBase) Register(topic Topic) error {
	if topic.Name == "" {
		return fmt.Errorf("topic name is required")
	}
	if len(topic.Triggers) == 0 {
		return fmt.Errorf("topic %s needs at least one trigger", topic.Name)
	}
	if topic.Answer == "" {
		return fmt.Errorf("topic %s needs an answer", topic.Name)
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.names[topic.Name] {
		return fmt.Errorf("topic already registered for %s", topic.Name)
	}
	kb.names[topic.Name] = true
	kb.topics = append(kb.topics, topic)
	return nil
}

// MustRegister adds a topic or panics.
func (kb *KnowledgeBase) MustRegister(topic Topic) {
	if err := kb.Register(topic); err != nil {
		panic(err)
	}
}

// Match returns the first topic with a trigger contained in text.
func (kb *KnowledgeBase) Match(text string) (Topic, bool) {
	t := words(normalize(text))
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	for _, topic := range kb.topics {
		for _, trigger := range topic.Triggers {
			if strings.Contains(t, trigger) {
				return topic, true
			}
		}
	}
	return Topic{}, false
}

// Topics lists the registered topic names in order.
func (kb *KnowledgeBase) Topics() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	names := make([]string, len(kb.topics))
	for i, t := range kb.topics {
		names[i] = t.Name
	}
	return names
}

func init() {
	// Payment goes first: "cash on delivery" is a payment question.
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "payment",
		Triggers: []string{"payment", "pay ", "upi", "cash on delivery", "cod ", "credit card", "debit card", "gpay", "paytm"},
		Answer: "We take UPI, cards and net banking. Cash on delivery is available on most pin codes. " +
			"Orders are confirmed on WhatsApp, so you only pay once we've checked availability.",
	})
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "delivery",
		Triggers: []string{"deliver", "shipping", "dispatch", "courier", "kab milega", "kab tak", "same day"},
		Answer: "We deliver across India in 3-5 working days. Same-day delivery is available in the city " +
			"for orders placed before 2 PM.",
	})
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "returns",
		Triggers: []string{"return", "refund", "exchange", "replace", "damaged", "wapas"},
		Answer: "If a gift arrives damaged, message us within 48 hours with a photo and we'll replace it " +
			"or refund you. Personalised items can't be returned unless they're faulty.",
	})
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "categories",
		Triggers: []string{"categories", "category", "what do you sell", "what all", "kya milta", "collection"},
		Answer: "We have gift boxes and hampers, flowers, personalised gifts, festive specials and " +
			"accessories. Tell me the occasion and I'll pick a few for you!",
	})
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "pricing",
		Triggers: []string{"pricing", "how much", "kitne ka", "kitna hai", "discount", "offer", "coupon"},
		Answer: "Our gifts start at ₹299 and most are under ₹2000. Share your budget and " +
			"I'll show what fits.",
	})
	DefaultKnowledgeBase.MustRegister(Topic{
		Name:     "contact",
		Triggers: []string{"contact", "phone number", "call you", "talk to", "whatsapp", "email", "store address", "human"},
		Answer:   "You can reach us on WhatsApp any time between 9 AM and 9 PM. Tap the link below to chat with our team.",
		WhatsApp: true,
	})
}
