// Package service holds the storefront's business rules on top of the
// repository.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftchoice/storefront/internal/cache"
	"github.com/giftchoice/storefront/internal/chatbot"
	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/policy"
	"github.com/giftchoice/storefront/internal/repository"
)

// CartNotifier is told about every cart change so open chat sockets can
// refresh their badge.
type CartNotifier interface {
	NotifyCartUpdated(sessionID string, itemCount int)
}

type Service struct {
	store        repository.Store
	cache        cache.ProductCache
	policyEngine *policy.Engine
	bot          *chatbot.Engine
	config       *config.Config
	notifier     CartNotifier
}

func New(store repository.Store, productCache cache.ProductCache, policyEngine *policy.Engine, cfg *config.Config) *Service {
	if productCache == nil {
		productCache = cache.NopCache{}
	}
	return &Service{
		store:        store,
		cache:        productCache,
		policyEngine: policyEngine,
		bot: chatbot.NewEngine(chatbot.Config{
			StoreName:      cfg.StoreName,
			WhatsAppNumber: cfg.WhatsAppNumber,
		}),
		config: cfg,
	}
}

// SetCartNotifier registers the notifier. It must be called before serving.
func (s *Service) SetCartNotifier(n CartNotifier) {
	s.notifier = n
}

func newID(prefix string) string {
	return prefix + uuid.New().String()
}

var timeNow = func() time.Time {
	return time.Now().UTC()
}
