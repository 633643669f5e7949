package helpers

import (
	"context"
	"testing"

	"github.com/giftchoice/storefront/internal/repository"
)

// NewTestStore opens a migrated in-memory store closed at test cleanup.
func NewTestStore(t *testing.T) *repository.SQLStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:", 1)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
