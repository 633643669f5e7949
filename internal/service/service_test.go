package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftchoice/storefront/internal/cache"
	"github.com/giftchoice/storefront/internal/chatbot"
	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/policy"
	"github.com/giftchoice/storefront/internal/repository"
	"github.com/giftchoice/storefront/tests/helpers"
)

type cartEvent struct {
	sessionID string
	count     int
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []cartEvent
}

func (n *recordingNotifier) NotifyCartUpdated(sessionID string, itemCount int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, cartEvent{sessionID, itemCount})
}

func (n *recordingNotifier) last() cartEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return cartEvent{}
	}
	return n.events[len(n.events)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		StoreName:      "GIFT CHOICE",
		WhatsAppNumber: "919876543210",
		SessionTTL:     30 * 24 * time.Hour,
	}
}

func newTestService(t *testing.T, policyContent string) (*Service, *repository.SQLStore, *recordingNotifier) {
	t.Helper()
	ctx := context.Background()
	store := helpers.NewTestStore(t)

	mr := miniredis.RunT(t)
	productCache := cache.NewRedisProductCache(cache.NewRedisClient(mr.Addr(), "", 0), time.Minute)
	t.Cleanup(func() { productCache.Close() })

	engine, err := policy.NewEngine(ctx, policyContent)
	require.NoError(t, err)

	svc := New(store, productCache, engine, testConfig())
	notifier := &recordingNotifier{}
	svc.SetCartNotifier(notifier)
	return svc, store, notifier
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func flag(b bool) *bool { return &b }

func qty(n int) *int { return &n }

func sizes(s ...domain.Size) *[]domain.Size { return &s }

func mustProduct(t *testing.T, svc *Service, name string, price float64, extra func(*domain.ProductRequest)) *domain.Product {
	t.Helper()
	req := &domain.ProductRequest{Name: str(name), Price: num(price)}
	if extra != nil {
		extra(req)
	}
	p, err := svc.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	return p
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, policy.DefaultOrderPolicy)

	ny, err := svc.CreateCategory(ctx, &domain.CategoryRequest{Name: str("New Year")})
	require.NoError(t, err)
	assert.Equal(t, "new-year", ny.Slug)

	boxes, err := svc.CreateCategory(ctx, &domain.CategoryRequest{Name: str("Gift Boxes!")})
	require.NoError(t, err)
	assert.Equal(t, "gift-boxes", boxes.Slug)

	_, err = svc.CreateCategory(ctx, &domain.CategoryRequest{Name: str("new year")})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateCategory(ctx, &domain.CategoryRequest{Name: str("  ")})
	assert.True(t, domain.IsValidation(err))

	bySlug, err := svc.GetCategory(ctx, "new-year")
	require.NoError(t, err)
	assert.Equal(t, ny.ID, bySlug.ID)

	p := mustProduct(t, svc, "Party Hamper", 799, func(r *domain.ProductRequest) { r.CategoryID = str(ny.ID) })
	assert.Equal(t, "New Year", p.Category)

	// Warm the cache, rename, and read again.
	_, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.UpdateCategory(ctx, ny.ID, &domain.CategoryRequest{Name: str("New Year 2027")})
	require.NoError(t, err)
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Year 2027", got.Category)
	renamed, err := svc.GetCategory(ctx, ny.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-year-2027", renamed.Slug)

	_, err = svc.UpdateCategory(ctx, ny.ID, &domain.CategoryRequest{Slug: str("gift-boxes")})
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, svc.DeleteCategory(ctx, boxes.ID))
	err = svc.DeleteCategory(ctx, boxes.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Deleting a category leaves its products uncategorised, cached copies included.
	_, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, ny.ID))
	orphan, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, orphan.CategoryID)
	assert.Empty(t, orphan.Category)
}

func TestProductValidationAndCache(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, policy.DefaultOrderPolicy)

	_, err := svc.CreateProduct(ctx, &domain.ProductRequest{Price: num(100)})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateProduct(ctx, &domain.ProductRequest{Name: str("Mug"), Price: num(-1)})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateProduct(ctx, &domain.ProductRequest{Name: str("Mug"), Price: num(1), CategoryID: str("cat_missing")})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateProduct(ctx, &domain.ProductRequest{Name: str("Mug"), Price: num(1),
		Sizes: sizes(domain.Size{Name: "L", Price: 1}, domain.Size{Name: "L", Price: 2})})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.GetProduct(ctx, "prod_missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	p := mustProduct(t, svc, "Mug", 299, nil)
	assert.True(t, p.InStock)

	updated, err := svc.UpdateProduct(ctx, p.ID, &domain.ProductRequest{Price: num(349)})
	require.NoError(t, err)
	assert.Equal(t, 349.0, updated.Price)

	// A direct store change is hidden by the cache until the service evicts.
	_, err = store.UpdateProduct(ctx, p.ID, &domain.ProductRequest{Name: str("Renamed behind the cache")})
	require.NoError(t, err)
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCartFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(t, policy.DefaultOrderPolicy)

	mug := mustProduct(t, svc, "Mug", 300, nil)
	roses := mustProduct(t, svc, "Roses", 599, func(r *domain.ProductRequest) {
		r.Sizes = sizes(domain.Size{Name: "6", Price: 399}, domain.Size{Name: "12", Price: 599})
	})

	alice, minted, err := svc.ResolveSession(ctx, "")
	require.NoError(t, err)
	assert.True(t, minted)

	again, minted, err := svc.ResolveSession(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, minted)
	assert.Equal(t, alice.ID, again.ID)

	_, minted, err = svc.ResolveSession(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.True(t, minted)

	bob, _, err := svc.ResolveSession(ctx, "")
	require.NoError(t, err)

	first, err := svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: mug.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, cartEvent{alice.ID, 3}, notifier.last())

	line, err := svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: roses.ID, Size: "6"})
	require.NoError(t, err)
	assert.Equal(t, 399.0, line.UnitPrice)

	_, err = svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: roses.ID, Size: "24"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: "prod_missing"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.AddToCart(ctx, alice.ID, &domain.CartAddRequest{ProductID: mug.ID, Quantity: -1})
	assert.True(t, domain.IsValidation(err))

	cart, err := svc.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)
	assert.Equal(t, 1299.0, cart.Subtotal)

	// Bob cannot touch Alice's lines.
	err = svc.RemoveCartItem(ctx, bob.ID, line.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	err = svc.UpdateCartItem(ctx, bob.ID, line.ID, &domain.CartUpdateRequest{Quantity: qty(5)})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	cart, err = svc.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	// A missing quantity is rejected and leaves the line alone.
	err = svc.UpdateCartItem(ctx, alice.ID, line.ID, &domain.CartUpdateRequest{})
	assert.True(t, domain.IsValidation(err))
	cart, err = svc.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	require.NoError(t, svc.UpdateCartItem(ctx, alice.ID, line.ID, &domain.CartUpdateRequest{Quantity: qty(0)}))
	cart, err = svc.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, mug.ID, cart.Items[0].ProductID)

	// The snapshot price survives a catalog change.
	_, err = svc.UpdateProduct(ctx, mug.ID, &domain.ProductRequest{Price: num(999)})
	require.NoError(t, err)
	cart, err = svc.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 999.0, cart.Items[0].Product.Price)

	require.NoError(t, svc.ClearCart(ctx, alice.ID))
	assert.Equal(t, cartEvent{alice.ID, 0}, notifier.last())
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, policy.DefaultOrderPolicy)
	mug := mustProduct(t, svc, "Mug", 300.1, nil)
	frame := mustProduct(t, svc, "Frame", 750, func(r *domain.ProductRequest) {
		r.Sizes = sizes(domain.Size{Name: "A4", Price: 850})
	})

	order, err := svc.CreateOrder(ctx, &domain.OrderCreateRequest{
		Customer: domain.Customer{Name: " Asha ", Phone: "9876543210"},
		Items: []domain.OrderLineRequest{
			{ProductID: mug.ID, Quantity: 3},
			{ProductID: frame.ID, Quantity: 1, Size: "A4"},
		},
		Total: num(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", order.CustomerName)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 1750.3, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Frame", order.Items[1].ProductName)
	assert.Equal(t, 850.0, order.Items[1].UnitPrice)

	require.NoError(t, svc.DeleteProduct(ctx, mug.ID))
	stored, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1750.3, stored.Total)
	assert.Equal(t, "Mug", stored.Items[0].ProductName)

	tests := []struct {
		name string
		req  domain.OrderCreateRequest
	}{
		{"missing name", domain.OrderCreateRequest{Customer: domain.Customer{Phone: "1"}, Items: []domain.OrderLineRequest{{ProductID: frame.ID, Quantity: 1}}}},
		{"missing phone", domain.OrderCreateRequest{Customer: domain.Customer{Name: "A"}, Items: []domain.OrderLineRequest{{ProductID: frame.ID, Quantity: 1}}}},
		{"no items", domain.OrderCreateRequest{Customer: domain.Customer{Name: "A", Phone: "1"}}},
		{"zero quantity", domain.OrderCreateRequest{Customer: domain.Customer{Name: "A", Phone: "1"}, Items: []domain.OrderLineRequest{{ProductID: frame.ID}}}},
		{"unknown product", domain.OrderCreateRequest{Customer: domain.Customer{Name: "A", Phone: "1"}, Items: []domain.OrderLineRequest{{ProductID: "nope", Quantity: 1}}}},
		{"bad email", domain.OrderCreateRequest{Customer: domain.Customer{Name: "A", Phone: "1", Email: "nope"}, Items: []domain.OrderLineRequest{{ProductID: frame.ID, Quantity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, &tt.req)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("any transition by default", func(t *testing.T) {
		svc, _, _ := newTestService(t, policy.DefaultOrderPolicy)
		p := mustProduct(t, svc, "Mug", 300, nil)
		order, err := svc.CreateOrder(ctx, &domain.OrderCreateRequest{
			Customer: domain.Customer{Name: "A", Phone: "1"},
			Items:    []domain.OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		delivered := domain.OrderStatusDelivered
		got, err := svc.UpdateOrder(ctx, order.ID, &domain.OrderUpdateRequest{Status: &delivered})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusDelivered, got.Status)

		pending := domain.OrderStatus("PENDING")
		got, err = svc.UpdateOrder(ctx, order.ID, &domain.OrderUpdateRequest{Status: &pending})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, got.Status)

		bogus := domain.OrderStatus("shipped")
		_, err = svc.UpdateOrder(ctx, order.ID, &domain.OrderUpdateRequest{Status: &bogus})
		assert.True(t, domain.IsValidation(err))

		_, err = svc.UpdateOrder(ctx, "ord_missing", &domain.OrderUpdateRequest{Status: &delivered})
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = svc.ListOrders(ctx, "shipped")
		assert.True(t, domain.IsValidation(err))
		list, err := svc.ListOrders(ctx, "pending")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("strict policy", func(t *testing.T) {
		svc, _, _ := newTestService(t, policy.StrictOrderPolicy)
		p := mustProduct(t, svc, "Mug", 300, nil)
		order, err := svc.CreateOrder(ctx, &domain.OrderCreateRequest{
			Customer: domain.Customer{Name: "A", Phone: "1"},
			Items:    []domain.OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		delivered := domain.OrderStatusDelivered
		_, err = svc.UpdateOrder(ctx, order.ID, &domain.OrderUpdateRequest{Status: &delivered})
		assert.True(t, domain.IsValidation(err))

		confirmed := domain.OrderStatusConfirmed
		got, err := svc.UpdateOrder(ctx, order.ID, &domain.OrderUpdateRequest{Status: &confirmed})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(t, policy.DefaultOrderPolicy)
	roses := mustProduct(t, svc, "Red Rose Bouquet", 599, func(r *domain.ProductRequest) {
		r.Sizes = sizes(domain.Size{Name: "12 Roses", Price: 599})
	})
	session, _, err := svc.ResolveSession(ctx, "")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, session.ID, &domain.CheckoutRequest{Customer: domain.Customer{Name: "Asha", Phone: "1"}})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.AddToCart(ctx, session.ID, &domain.CartAddRequest{ProductID: roses.ID, Quantity: 2, Size: "12 Roses"})
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, session.ID, &domain.CheckoutRequest{Customer: domain.Customer{Name: "Asha"}})
	assert.True(t, domain.IsValidation(err))

	result, err := svc.Checkout(ctx, session.ID, &domain.CheckoutRequest{Customer: domain.Customer{Name: "Asha", Phone: "98765 43210"}})
	require.NoError(t, err)
	assert.Equal(t, 1198.0, result.Order.Total)
	assert.Contains(t, result.Summary, "1. Red Rose Bouquet (12 Roses) x2 = ₹1198")
	assert.Contains(t, result.Summary, "Order ID: "+result.Order.ID)
	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/919876543210?text="))

	cart, err := svc.GetCart(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, cartEvent{session.ID, 0}, notifier.last())

	stored, err := svc.GetOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	for _, id := range []string{stored.ID, stored.Items[0].ID} {
		_, err := uuid.Parse(id[strings.Index(id, "_")+1:])
		assert.NoError(t, err, id)
	}
}

func TestMessagesAndPromos(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, policy.DefaultOrderPolicy)

	_, err := svc.CreateMessage(ctx, &domain.MessageRequest{Name: str("A"), Body: str("hi")})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.CreateMessage(ctx, &domain.MessageRequest{Name: str("A"), Email: str("nope"), Body: str("hi")})
	assert.True(t, domain.IsValidation(err))

	msg, err := svc.CreateMessage(ctx, &domain.MessageRequest{Name: str("A"), Email: str("a@x.in"), Body: str("Do you deliver to Pune?")})
	require.NoError(t, err)
	assert.False(t, msg.Read)

	msg, err = svc.UpdateMessage(ctx, msg.ID, &domain.MessageRequest{Read: flag(true)})
	require.NoError(t, err)
	assert.True(t, msg.Read)

	banner, err := svc.CreatePromo(ctx, domain.PromoKindBanner, &domain.PromoRequest{MediaURL: str("/b.jpg")})
	require.NoError(t, err)
	assert.True(t, banner.Active)
	assert.True(t, strings.HasPrefix(banner.ID, "ban_"))

	post, err := svc.CreatePromo(ctx, domain.PromoKindSocial, &domain.PromoRequest{MediaURL: str("/p.jpg"), Platform: str("instagram"), Active: flag(false)})
	require.NoError(t, err)
	assert.False(t, post.Active)

	_, err = svc.CreatePromo(ctx, domain.PromoKindBanner, &domain.PromoRequest{})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.GetPromo(ctx, domain.PromoKindBanner, post.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.UnreadMessages)
}

func TestSearchAndChat(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, policy.DefaultOrderPolicy)
	seeded, err := store.SeedCatalog(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	results, err := svc.Search(ctx, "paisa")
	require.NoError(t, err)
	var names []string
	for _, r := range results {
		names = append(names, r.Product.Name)
	}
	assert.Contains(t, names, "Leather Wallet for Men")
	assert.Contains(t, names, "Gift Card")

	empty, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	turn, err := svc.Chat(ctx, chatbot.StateIntro, chatbot.Context{}, chatbot.Input{Kind: chatbot.InputText, Text: "birthday gift under 500"})
	require.NoError(t, err)
	assert.Equal(t, chatbot.StateSuggestion, turn.State)
	assert.Equal(t, "Under ₹500", turn.Context.Budget)
	require.NotEmpty(t, turn.Output.Products)
	for _, p := range turn.Output.Products {
		assert.LessOrEqual(t, p.Price, 500.0)
	}

	_, err = svc.Chat(ctx, chatbot.StateIntro, chatbot.Context{}, chatbot.Input{Kind: "dance"})
	assert.True(t, domain.IsValidation(err))
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, policy.DefaultOrderPolicy)
	p := mustProduct(t, svc, "Mug", 300, nil)

	_, err := svc.CreateReview(ctx, p.ID, &domain.ReviewRequest{Name: "Asha", Rating: 6})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.CreateReview(ctx, "prod_missing", &domain.ReviewRequest{Name: "Asha", Rating: 5})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	for _, rating := range []int{5, 4, 4} {
		_, err := svc.CreateReview(ctx, p.ID, &domain.ReviewRequest{Name: "Asha", Rating: rating})
		require.NoError(t, err)
	}
	reviews, err := svc.ListReviews(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
	assert.Equal(t, 4.3, AverageRating(reviews))
	assert.Equal(t, 0.0, AverageRating(nil))
}
