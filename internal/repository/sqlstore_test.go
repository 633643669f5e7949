package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftchoice/storefront/internal/domain"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", 1)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedCategory(t *testing.T, s *SQLStore, id, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: id, Name: name, Slug: domain.Slugify(name), CreatedAt: time.Now().UTC()}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	return c
}

func seedProductRow(t *testing.T, s *SQLStore, p domain.Product) *domain.Product {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	if err := s.CreateProduct(context.Background(), &p); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	return &p
}

func seedSessionRow(t *testing.T, s *SQLStore, id string) {
	t.Helper()
	now := time.Now().UTC()
	if err := s.CreateSession(context.Background(), &domain.Session{ID: id, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
}

func cartLine(session, product string, qty int, size string, price float64) *domain.CartItem {
	now := time.Now().UTC()
	return &domain.CartItem{
		ID: "cart_" + session + product + size + time.Now().Format("150405.000000000"), SessionID: session,
		ProductID: product, Quantity: qty, SizeName: size, UnitPrice: price, CreatedAt: now, UpdatedAt: now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}

func TestProductCategoryJoinAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ny := seedCategory(t, s, "cat_ny", "New Year")
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Party Hamper", Description: "Confetti and chocolates", Price: 799,
		CategoryID: ny.ID, InStock: true, Featured: true, Images: []string{"a.jpg", "b.jpg"},
		Sizes: []domain.Size{{Name: "Small", Price: 599}, {Name: "Large", Price: 999}}})
	seedProductRow(t, s, domain.Product{ID: "p2", Name: "Rose Bouquet", Price: 499, InStock: false,
		CreatedAt: time.Now().UTC().Add(-time.Minute)})

	got, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New Year", got.Category)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.Images)
	assert.Len(t, got.Sizes, 2)
	assert.True(t, got.Featured)

	missing, err := s.GetProduct(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, category := range []string{"cat_ny", "new-year", "new year"} {
		list, err := s.ListProducts(ctx, domain.ProductFilter{Category: category})
		require.NoError(t, err)
		require.Len(t, list, 1, category)
		assert.Equal(t, "p1", list[0].ID)
	}

	inStock := false
	list, err := s.ListProducts(ctx, domain.ProductFilter{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	list, err = s.ListProducts(ctx, domain.ProductFilter{Search: "CONFETTI"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	all, err := s.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID, "newest first")

	// Renaming the category is reflected on read.
	newName := "New Year 2027"
	ok, err := s.UpdateCategory(ctx, ny.ID, &domain.CategoryRequest{Name: &newName})
	require.NoError(t, err)
	require.True(t, ok)
	got, err = s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New Year 2027", got.Category)
}

func TestUpdateProductPartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Description: "Ceramic", Price: 300, InStock: true})

	price := 350.0
	ok, err := s.UpdateProduct(ctx, "p1", &domain.ProductRequest{Price: &price})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.Price)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, "Ceramic", got.Description)
	assert.True(t, got.InStock)

	ok, err = s.UpdateProduct(ctx, "missing", &domain.ProductRequest{Price: &price})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateProduct(ctx, "p1", &domain.ProductRequest{})
	require.NoError(t, err)
	assert.True(t, ok, "empty update on an existing row")
}

func TestCartUpsertSumsQuantities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Price: 300, InStock: true})
	seedSessionRow(t, s, "s1")

	first, err := s.UpsertCartItem(ctx, cartLine("s1", "p1", 2, "", 300))
	require.NoError(t, err)
	second, err := s.UpsertCartItem(ctx, cartLine("s1", "p1", 3, "", 999))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, 300.0, second.UnitPrice, "snapshot price is kept")
	assert.Equal(t, 1500.0, second.LineTotal)

	// A different size is a different line.
	_, err = s.UpsertCartItem(ctx, cartLine("s1", "p1", 1, "Large", 450))
	require.NoError(t, err)

	items, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mug", items[0].Product.Name)
}

func TestCartScopedToSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Price: 300, InStock: true})
	seedSessionRow(t, s, "alice")
	seedSessionRow(t, s, "bob")

	line, err := s.UpsertCartItem(ctx, cartLine("alice", "p1", 1, "", 300))
	require.NoError(t, err)

	deleted, err := s.DeleteCartItem(ctx, "bob", line.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	updated, err := s.UpdateCartItemQuantity(ctx, "bob", line.ID, 10)
	require.NoError(t, err)
	assert.False(t, updated)

	items, err := s.GetCartItems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	n, err := s.ClearCart(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGetOrCreateSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	created, err := s.GetOrCreateSession(ctx, &domain.Session{ID: "tok", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	again, err := s.GetOrCreateSession(ctx, &domain.Session{ID: "tok", CreatedAt: now, ExpiresAt: now.Add(48 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.WithinDuration(t, now.Add(time.Hour), again.ExpiresAt, time.Second)
}

func TestCreateOrderSnapshotsLines(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Price: 300, InStock: true})
	seedProductRow(t, s, domain.Product{ID: "p2", Name: "Frame", Price: 750, InStock: true})

	now := time.Now().UTC()
	order := &domain.Order{
		ID: "ord_1", CustomerName: "Asha", CustomerPhone: "9876543210", Status: domain.OrderStatusPending,
		CreatedAt: now, UpdatedAt: now,
		Items: []domain.OrderItem{
			{ID: "oi_1", ProductID: "p1", ProductName: "Mug", Quantity: 2, UnitPrice: 300},
			{ID: "oi_2", ProductID: "p2", ProductName: "Frame", Quantity: 1, UnitPrice: 750, SizeName: "A4"},
		},
	}
	order.Total = domain.OrderTotal(order.Items).InexactFloat64()
	require.NoError(t, s.CreateOrder(ctx, order))

	var orderRows, itemRows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orderRows))
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = 'ord_1'`).Scan(&itemRows))
	assert.Equal(t, 1, orderRows)
	assert.Equal(t, 2, itemRows)

	// Editing and deleting products never changes the order.
	price := 999.0
	_, err := s.UpdateProduct(ctx, "p1", &domain.ProductRequest{Price: &price})
	require.NoError(t, err)
	_, err = s.DeleteProduct(ctx, "p2")
	require.NoError(t, err)

	got, err := s.GetOrder(ctx, "ord_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 1350.0, got.Total)
	assert.Equal(t, 300.0, got.Items[0].UnitPrice)
	assert.Equal(t, "Frame", got.Items[1].ProductName)
	assert.Equal(t, "A4", got.Items[1].SizeName)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}

func TestCreateOrderRollsBackOnLineFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	order := &domain.Order{
		ID: "ord_1", CustomerName: "Asha", CustomerPhone: "1", Status: domain.OrderStatusPending,
		CreatedAt: now, UpdatedAt: now,
		Items: []domain.OrderItem{
			{ID: "dup", ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: 300},
			{ID: "dup", ProductID: "p2", ProductName: "Frame", Quantity: 1, UnitPrice: 750},
		},
	}
	require.Error(t, s.CreateOrder(ctx, order))

	got, err := s.GetOrder(ctx, "ord_1")
	require.NoError(t, err)
	assert.Nil(t, got, "no partial order survives")
}

func TestCheckoutCartClearsCart(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Price: 300, InStock: true})
	seedProductRow(t, s, domain.Product{ID: "p2", Name: "Card", Price: 100, InStock: true})
	seedSessionRow(t, s, "s1")
	_, err := s.UpsertCartItem(ctx, cartLine("s1", "p1", 1, "", 300))
	require.NoError(t, err)
	lines, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)

	// Added after the cart was read for checkout.
	_, err = s.UpsertCartItem(ctx, cartLine("s1", "p2", 1, "", 100))
	require.NoError(t, err)

	now := time.Now().UTC()
	order := &domain.Order{ID: "ord_1", CustomerName: "Asha", CustomerPhone: "1", Total: 300,
		Status: domain.OrderStatusPending, CreatedAt: now, UpdatedAt: now,
		Items: []domain.OrderItem{{ID: "oi_1", ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: 300}}}
	require.NoError(t, s.CheckoutCart(ctx, "s1", order, lines))

	items, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestCheckoutCartKeepsChangedLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Mug", Price: 300, InStock: true})
	seedSessionRow(t, s, "s1")
	_, err := s.UpsertCartItem(ctx, cartLine("s1", "p1", 1, "", 300))
	require.NoError(t, err)
	lines, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)

	_, err = s.UpsertCartItem(ctx, cartLine("s1", "p1", 2, "", 300))
	require.NoError(t, err)

	now := time.Now().UTC()
	order := &domain.Order{ID: "ord_1", CustomerName: "Asha", CustomerPhone: "1", Total: 300,
		Status: domain.OrderStatusPending, CreatedAt: now, UpdatedAt: now,
		Items: []domain.OrderItem{{ID: "oi_1", ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: 300}}}
	require.NoError(t, s.CheckoutCart(ctx, "s1", order, lines))

	items, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestFileStoreForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db") + "?mode=rwc"
	s, err := NewSQLiteStore(dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	// Hold one connection so the statements below run on others.
	pinned, err := s.db.Conn(ctx)
	require.NoError(t, err)
	defer pinned.Close()
	var fk int
	require.NoError(t, pinned.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
	require.NoError(t, s.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	seedCategory(t, s, "cat_1", "Flowers")
	seedProductRow(t, s, domain.Product{ID: "p1", Name: "Roses", Price: 599, CategoryID: "cat_1", InStock: true})
	seedProductRow(t, s, domain.Product{ID: "p2", Name: "Mug", Price: 300, InStock: true})
	seedSessionRow(t, s, "s1")
	_, err = s.UpsertCartItem(ctx, cartLine("s1", "p2", 1, "", 300))
	require.NoError(t, err)
	require.NoError(t, s.CreateReview(ctx, &domain.Review{ID: "r1", ProductID: "p2", Name: "Asha", Rating: 5, CreatedAt: time.Now().UTC()}))

	ok, err := s.DeleteCategory(ctx, "cat_1")
	require.NoError(t, err)
	require.True(t, ok)
	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Empty(t, p.CategoryID)
	assert.Empty(t, p.Category)

	ok, err = s.DeleteProduct(ctx, "p2")
	require.NoError(t, err)
	require.True(t, ok)
	items, err := s.GetCartItems(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items)
	reviews, err := s.ListReviews(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestSQLiteDSNOptions(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on&_busy_timeout=5000", sqliteDSN(":memory:"))
	assert.Equal(t, "file:a.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:a.db?mode=rwc"))
	assert.Equal(t, "file:a.db?_busy_timeout=100&_foreign_keys=on", sqliteDSN("file:a.db?_busy_timeout=100"))
}

func TestOrdersListAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	for i, id := range []string{"o1", "o2"} {
		o := &domain.Order{ID: id, CustomerName: "C", CustomerPhone: "1", Total: 100, Status: domain.OrderStatusPending,
			CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now,
			Items: []domain.OrderItem{{ID: "i" + id, ProductID: "p", ProductName: "P", Quantity: 1, UnitPrice: 100}}}
		require.NoError(t, s.CreateOrder(ctx, o))
	}

	delivered := domain.OrderStatusDelivered
	ok, err := s.UpdateOrder(ctx, "o1", &domain.OrderUpdateRequest{Status: &delivered})
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := s.ListOrders(ctx, domain.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "o2", pending[0].ID)
	assert.Len(t, pending[0].Items, 1)

	all, err := s.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o2", all[0].ID)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Orders[domain.OrderStatusDelivered])
	assert.Equal(t, 1, stats.Orders[domain.OrderStatusPending])
	assert.Equal(t, 0, stats.Orders[domain.OrderStatusCancelled])
	assert.Equal(t, 200.0, stats.Revenue)

	deleted, err := s.DeleteOrder(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, deleted)
	var items int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = 'o1'`).Scan(&items))
	assert.Zero(t, items)
}

func TestPromosOrderedByDisplayOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	promos := []domain.Promo{
		{ID: "b1", MediaURL: "1.jpg", Active: true, DisplayOrder: 2, CreatedAt: now},
		{ID: "b2", MediaURL: "2.jpg", Active: true, DisplayOrder: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: "b3", MediaURL: "3.jpg", Active: true, DisplayOrder: 1, CreatedAt: now},
		{ID: "b4", MediaURL: "4.jpg", Active: false, DisplayOrder: 0, CreatedAt: now},
	}
	for i := range promos {
		promos[i].Kind = domain.PromoKindBanner
		require.NoError(t, s.CreatePromo(ctx, &promos[i]))
	}

	active := true
	list, err := s.ListPromos(ctx, domain.PromoKindBanner, &active)
	require.NoError(t, err)
	var ids []string
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"b3", "b2", "b1"}, ids)

	social, err := s.ListPromos(ctx, domain.PromoKindSocial, nil)
	require.NoError(t, err)
	assert.Empty(t, social)

	_, err = s.ListPromos(ctx, domain.PromoKind("tiktok"), nil)
	assert.Error(t, err)
}

func TestMessagesReadFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateMessage(ctx, &domain.Message{ID: "m1", Name: "A", Email: "a@x.in", Body: "hi", CreatedAt: now}))
	require.NoError(t, s.CreateMessage(ctx, &domain.Message{ID: "m2", Name: "B", Email: "b@x.in", Body: "yo", CreatedAt: now}))

	read := true
	ok, err := s.UpdateMessage(ctx, "m1", &domain.MessageRequest{Read: &read})
	require.NoError(t, err)
	require.True(t, ok)

	unread := false
	list, err := s.ListMessages(ctx, &unread)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m2", list[0].ID)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestSeedCatalogOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seeded, err := s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	products, err := s.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, len(seedProducts))
	for _, p := range products {
		assert.NotEmpty(t, p.Category, p.Name)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO sessions (id, expires_at, created_at) VALUES ('x', ?, ?)`, time.Now(), time.Now()); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	got, err := s.GetSession(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, got)
}
