// Package repository provides persistence for the storefront.
package repository

import (
	"context"

	"github.com/giftchoice/storefront/internal/domain"
)

// Store defines the interface for data persistence. Getters return
// (nil, nil) when the row does not exist; deleters report whether a row
// was removed.
type Store interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// Category operations
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, id string, req *domain.CategoryRequest) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)

	// Product operations
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req *domain.ProductRequest) (bool, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)

	// Review operations
	CreateReview(ctx context.Context, review *domain.Review) error
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	DeleteReview(ctx context.Context, id string) (bool, error)

	// Session and cart operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetOrCreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error)
	UpsertCartItem(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	GetCartItems(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, sessionID, itemID string, quantity int) (bool, error)
	DeleteCartItem(ctx context.Context, sessionID, itemID string) (bool, error)
	ClearCart(ctx context.Context, sessionID string) (int64, error)

	// Order operations
	CreateOrder(ctx context.Context, order *domain.Order) error
	CheckoutCart(ctx context.Context, sessionID string, order *domain.Order, lines []domain.CartItem) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, id string, req *domain.OrderUpdateRequest) (bool, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)

	// Contact message operations
	CreateMessage(ctx context.Context, msg *domain.Message) error
	GetMessage(ctx context.Context, id string) (*domain.Message, error)
	ListMessages(ctx context.Context, read *bool) ([]domain.Message, error)
	UpdateMessage(ctx context.Context, id string, req *domain.MessageRequest) (bool, error)
	DeleteMessage(ctx context.Context, id string) (bool, error)

	// Banner and social post operations
	CreatePromo(ctx context.Context, promo *domain.Promo) error
	GetPromo(ctx context.Context, kind domain.PromoKind, id string) (*domain.Promo, error)
	ListPromos(ctx context.Context, kind domain.PromoKind, active *bool) ([]domain.Promo, error)
	UpdatePromo(ctx context.Context, kind domain.PromoKind, id string, req *domain.PromoRequest) (bool, error)
	DeletePromo(ctx context.Context, kind domain.PromoKind, id string) (bool, error)

	// Dashboard
	Stats(ctx context.Context) (*domain.Stats, error)
}
