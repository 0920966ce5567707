package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/shipping"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// MaxItemQuantity is the largest quantity a single cart line may hold.
const MaxItemQuantity = 99

// Cart is a visitor's cart. It lives in the visitor's session and is safe
// for concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []domain.CartItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Items returns a copy of the cart lines in the order they were added.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartItem(nil), c.items...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func (c *Cart) indexLocked(sku string) int {
	for i, item := range c.items {
		if item.SKU == sku {
			return i
		}
	}
	return -1
}

// CartService provides business logic for shopping cart operations
type CartService interface {
	AddItem(ctx context.Context, cart *Cart, sku string, quantity int) (*domain.OrderSummary, error)
	UpdateItemQuantity(ctx context.Context, cart *Cart, sku string, quantity int) (*domain.OrderSummary, error)
	RemoveItem(ctx context.Context, cart *Cart, sku string) (*domain.OrderSummary, error)
	GetCartSummary(ctx context.Context, cart *Cart) (*domain.OrderSummary, error)
}

type cartService struct {
	catalog  CatalogService
	shipping shipping.Provider
}

// NewCartService creates a new CartService instance
func NewCartService(catalog CatalogService, shippingProvider shipping.Provider) CartService {
	return &cartService{
		catalog:  catalog,
		shipping: shippingProvider,
	}
}

// AddItem adds quantity of sku to the cart, merging with an existing line.
func (s *cartService) AddItem(ctx context.Context, cart *Cart, sku string, quantity int) (*domain.OrderSummary, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}

	cart.mu.Lock()
	if i := cart.indexLocked(sku); i >= 0 {
		if cart.items[i].Quantity+quantity > MaxItemQuantity {
			cart.mu.Unlock()
			return nil, ErrInvalidQuantity
		}
		cart.items[i].Quantity += quantity
	} else {
		cart.items = append(cart.items, domain.CartItem{
			SKU:            product.SKU,
			Name:           product.Name,
			Quantity:       quantity,
			UnitPriceCents: product.PriceCents,
		})
	}
	cart.mu.Unlock()

	if telemetry.Checkout != nil {
		telemetry.Checkout.CartItemsAdded.Inc()
	}

	return s.GetCartSummary(ctx, cart)
}

// UpdateItemQuantity sets the quantity of an existing line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, cart *Cart, sku string, quantity int) (*domain.OrderSummary, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	cart.mu.Lock()
	i := cart.indexLocked(sku)
	if i < 0 {
		cart.mu.Unlock()
		return nil, ErrCartItemNotFound
	}
	cart.items[i].Quantity = quantity
	cart.mu.Unlock()

	return s.GetCartSummary(ctx, cart)
}

// RemoveItem deletes a line from the cart.
func (s *cartService) RemoveItem(ctx context.Context, cart *Cart, sku string) (*domain.OrderSummary, error) {
	cart.mu.Lock()
	i := cart.indexLocked(sku)
	if i < 0 {
		cart.mu.Unlock()
		return nil, ErrCartItemNotFound
	}
	cart.items = append(cart.items[:i], cart.items[i+1:]...)
	cart.mu.Unlock()

	return s.GetCartSummary(ctx, cart)
}

// GetCartSummary prices the cart, including delivery.
func (s *cartService) GetCartSummary(ctx context.Context, cart *Cart) (*domain.OrderSummary, error) {
	summary, _, err := quote(ctx, s.shipping, cart.Items(), shipping.ShippingAddress{})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// quote builds the price breakdown for items. An empty item list costs
// nothing and needs no delivery quote; otherwise the cheapest rate is used
// and returned alongside the summary.
func quote(ctx context.Context, provider shipping.Provider, items []domain.CartItem, dest shipping.ShippingAddress) (*domain.OrderSummary, *shipping.Rate, error) {
	summary := &domain.OrderSummary{Items: items}
	for _, item := range items {
		summary.ItemCount += item.Quantity
		summary.SubtotalCents += item.LineTotalCents()
	}
	if len(items) == 0 {
		return summary, nil, nil
	}

	rates, err := provider.GetRates(ctx, shipping.RateParams{
		Destination: dest,
		ItemCount:   summary.ItemCount,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to quote delivery: %w", err)
	}
	if len(rates) == 0 {
		return nil, nil, shipping.ErrNoRates
	}

	rate := rates[0]
	summary.DeliveryCents = rate.CostCents
	summary.TotalCents = summary.SubtotalCents + summary.DeliveryCents
	return summary, &rate, nil
}
