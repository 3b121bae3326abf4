package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jerseylab/jerseylab-backend/internal/cart"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidCartItem = errors.New("invalid cart item")
)

// AddItemInput is a loosely typed add-to-cart submission. Price and
// Quantity accept numbers or strings.
type AddItemInput struct {
	ProductID string
	Name      string
	ImageURL  string
	Price     interface{}
	Size      string
	Quantity  interface{}
}

// CartItemView is a line item with its presentation fields.
type CartItemView struct {
	cart.LineItem
	UnitPriceDisplay string          `json:"unit_price_display"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// CartView is the cart as returned to clients.
type CartView struct {
	SessionID    string             `json:"session_id"`
	Items        []CartItemView     `json:"items"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	ItemCount    int                `json:"item_count"`
	AppliedPromo *cart.AppliedPromo `json:"applied_promo"`
	Discount     decimal.Decimal    `json:"discount"`
	Shipping     string             `json:"shipping"`
	Total        decimal.Decimal    `json:"total"`
}

// NewCartView renders ledger for sessionID.
func NewCartView(sessionID string, ledger *cart.Ledger) *CartView {
	items := make([]CartItemView, 0, len(ledger.Items))
	for _, item := range ledger.Items {
		items = append(items, CartItemView{
			LineItem:         item,
			UnitPriceDisplay: item.UnitPriceDisplay(),
			LineTotal:        item.LineTotal(),
		})
	}
	return &CartView{
		SessionID:    sessionID,
		Items:        items,
		Subtotal:     ledger.Subtotal(),
		ItemCount:    ledger.ItemCount(),
		AppliedPromo: ledger.Promo,
		Discount:     ledger.Discount(),
		Shipping:     cart.ShippingPlaceholder,
		Total:        ledger.FinalTotal(),
	}
}

// ApplyPromoResult carries the validation outcome alongside the cart.
// Cart reflects the stored state whether or not the code was accepted.
type ApplyPromoResult struct {
	Validation *PromoValidation
	Cart       *CartView
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, productID, size string, quantity interface{}) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID, size string) (*CartView, error)
	Clear(ctx context.Context, sessionID string) (*CartView, error)
	ApplyPromo(ctx context.Context, sessionID, code string) (*ApplyPromoResult, error)
	RemovePromo(ctx context.Context, sessionID string) (*CartView, error)
	// Ledger returns the raw stored ledger, used by checkout.
	Ledger(ctx context.Context, sessionID string) (*cart.Ledger, error)
}

type cartService struct {
	store        cart.Store
	promoService PromoService
	catalog      CatalogService
}

func NewCartService(store cart.Store, promoService PromoService, catalog CatalogService) CartService {
	return &cartService{
		store:        store,
		promoService: promoService,
		catalog:      catalog,
	}
}

func (s *cartService) Ledger(ctx context.Context, sessionID string) (*cart.Ledger, error) {
	ledger, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load cart session", err, logger.Fields{
			"session_id": sessionID,
		})
		return nil, err
	}
	return ledger, nil
}

func (s *cartService) save(ctx context.Context, sessionID string, ledger *cart.Ledger) (*CartView, error) {
	if err := s.store.Save(ctx, sessionID, ledger); err != nil {
		logger.Error("Failed to save cart session", err, logger.Fields{
			"session_id": sessionID,
		})
		return nil, err
	}
	return NewCartView(sessionID, ledger), nil
}

func (s *cartService) mutate(ctx context.Context, sessionID string, fn func(*cart.Ledger)) (*CartView, error) {
	ledger, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(ledger)
	s.refreshPromo(ctx, sessionID, ledger)
	return s.save(ctx, sessionID, ledger)
}

// refreshPromo revalidates the applied promo against the current subtotal.
// A promo that no longer qualifies is dropped; a store fault keeps it, and
// checkout revalidates anyway.
func (s *cartService) refreshPromo(ctx context.Context, sessionID string, ledger *cart.Ledger) {
	if ledger.Promo == nil {
		return
	}
	code := ledger.Promo.Code

	validation, err := s.promoService.Validate(ctx, code, ledger.Subtotal())
	if err != nil {
		logger.Warn("Could not revalidate applied promo", logger.Fields{
			"session_id": sessionID,
			"code":       code,
			"error":      err.Error(),
		})
		return
	}

	if !validation.Valid {
		logger.Info("Applied promo no longer qualifies", logger.Fields{
			"session_id": sessionID,
			"code":       code,
			"reason":     validation.Reason,
		})
		ledger.RemovePromo()
		return
	}
	ledger.ApplyPromo(validation.Applied())
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	ledger, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewCartView(sessionID, ledger), nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error) {
	size, ok := cart.NormalizeSize(input.Size)
	if !ok {
		return nil, ErrInvalidSize
	}

	item, err := s.resolveItem(ctx, input)
	if err != nil {
		return nil, err
	}
	item.Size = size
	item.Quantity = cart.CoerceQuantity(input.Quantity)

	logger.Info("Adding item to cart", logger.Fields{
		"session_id": sessionID,
		"product_id": item.ProductID,
		"size":       item.Size,
		"quantity":   item.Quantity,
	})

	return s.mutate(ctx, sessionID, func(l *cart.Ledger) {
		l.AddItem(item)
	})
}

// resolveItem prices the line from the catalog when the product id is a
// catalog id, and from the submitted price otherwise.
func (s *cartService) resolveItem(ctx context.Context, input AddItemInput) (cart.LineItem, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return cart.LineItem{}, fmt.Errorf("%w: product id is required", ErrInvalidCartItem)
	}

	if id, err := strconv.ParseUint(productID, 10, 64); err == nil && s.catalog != nil {
		product, err := s.catalog.GetProduct(ctx, uint(id))
		switch {
		case err == nil:
			if !product.IsPurchasable() {
				return cart.LineItem{}, fmt.Errorf("%w: product is not available", ErrInvalidCartItem)
			}
			return cart.LineItem{
				ProductID: productID,
				Name:      product.Title,
				ImageURL:  product.ImageURL,
				UnitPrice: money.Round(product.Price),
			}, nil
		case !errors.Is(err, ErrProductNotFound):
			return cart.LineItem{}, err
		}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return cart.LineItem{}, fmt.Errorf("%w: name is required", ErrInvalidCartItem)
	}
	return cart.LineItem{
		ProductID: productID,
		Name:      name,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		UnitPrice: money.NonNegative(money.Round(money.FromAny(input.Price))),
	}, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, productID, size string, quantity interface{}) (*CartView, error) {
	normalized, ok := cart.NormalizeSize(size)
	if !ok {
		return nil, ErrInvalidSize
	}
	return s.mutate(ctx, sessionID, func(l *cart.Ledger) {
		l.UpdateQuantity(strings.TrimSpace(productID), normalized, cart.CoerceQuantity(quantity))
	})
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID, size string) (*CartView, error) {
	normalized, ok := cart.NormalizeSize(size)
	if !ok {
		return nil, ErrInvalidSize
	}
	return s.mutate(ctx, sessionID, func(l *cart.Ledger) {
		l.RemoveItem(strings.TrimSpace(productID), normalized)
	})
}

func (s *cartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	logger.Info("Clearing cart", logger.Fields{
		"session_id": sessionID,
	})
	if err := s.store.Delete(ctx, sessionID); err != nil {
		logger.Error("Failed to clear cart session", err, logger.Fields{
			"session_id": sessionID,
		})
		return nil, err
	}
	return NewCartView(sessionID, cart.New()), nil
}

func (s *cartService) ApplyPromo(ctx context.Context, sessionID, code string) (*ApplyPromoResult, error) {
	ledger, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	normalized := NormalizePromoCode(code)
	var validation *PromoValidation
	switch {
	case normalized == "":
		validation = invalidPromo(ReasonEmptyCode, "Please enter a promo code")
	case ledger.HasPromo(normalized):
		validation = invalidPromo(ReasonAlreadyApplied, "This promo code is already applied")
	default:
		validation, err = s.promoService.Validate(ctx, normalized, ledger.Subtotal())
		if err != nil {
			return nil, err
		}
	}

	if !validation.Valid {
		logger.Info("Promo code not applied", logger.Fields{
			"session_id": sessionID,
			"code":       normalized,
			"reason":     validation.Reason,
		})
		return &ApplyPromoResult{Validation: validation, Cart: NewCartView(sessionID, ledger)}, nil
	}

	ledger.ApplyPromo(validation.Applied())
	view, err := s.save(ctx, sessionID, ledger)
	if err != nil {
		return nil, err
	}

	logger.Info("Promo code applied", logger.Fields{
		"session_id": sessionID,
		"code":       normalized,
		"discount":   validation.Discount.StringFixed(money.Places),
	})
	return &ApplyPromoResult{Validation: validation, Cart: view}, nil
}

func (s *cartService) RemovePromo(ctx context.Context, sessionID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(l *cart.Ledger) {
		l.RemovePromo()
	})
}
