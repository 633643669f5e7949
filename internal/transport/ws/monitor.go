package ws

import (
	"context"
	"time"

	"github.com/giftchoice/storefront/internal/chatbot"
)

// RunIdleMonitor nudges chats that have been quiet for the idle timeout.
func (s *Server) RunIdleMonitor(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweepIdle(now)
		}
	}
}

// sweepInterval is a quarter of the idle timeout, kept between 10ms and 5s.
func (s *Server) sweepInterval() time.Duration {
	interval := s.cfg.ChatIdleTimeout / 4
	if interval < 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	if interval > 5*time.Second {
		return 5 * time.Second
	}
	return interval
}

func (s *Server) sweepIdle(now time.Time) {
	s.mu.Lock()
	chats := make([]*chat, 0, len(s.chats))
	for _, ch := range s.chats {
		chats = append(chats, ch)
	}
	s.mu.Unlock()

	for _, ch := range chats {
		ch.mu.Lock()
		due := ch.helloed && !ch.closed && !ch.idled && ch.state.Open() &&
			now.Sub(ch.lastActive) >= s.cfg.ChatIdleTimeout
		ch.mu.Unlock()
		if due {
			s.advance(ch, chatbot.Input{Kind: chatbot.InputIdle}, "")
		}
	}
}
