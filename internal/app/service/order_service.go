package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/websocket"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidCheckout    = errors.New("invalid checkout")
	ErrPromoNoLongerValid = errors.New("applied promo code is no longer valid")
)

type CheckoutInput struct {
	SessionID string
	UserID    *uint
	Email     string
}

type OrderService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	ListOrders(status model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartService  CartService
	promoService PromoService
	events       EventPublisher
	db           *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartService CartService,
	promoService PromoService,
	events EventPublisher,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartService:  cartService,
		promoService: promoService,
		events:       publisherOrNoop(events),
		db:           db,
	}
}

// Checkout snapshots the session cart into a pending order and empties
// the cart. The applied promo is validated again against the current
// subtotal; if it no longer holds the cart loses it and checkout fails.
func (s *orderService) Checkout(ctx context.Context, input CheckoutInput) (*model.Order, error) {
	email := util.NormalizeEmail(input.Email)
	logger.Info("Starting checkout", logger.Fields{
		"session_id": input.SessionID,
		"user_id":    input.UserID,
	})

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidCheckout)
	}

	ledger, err := s.cartService.Ledger(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if ledger.IsEmpty() {
		logger.Warn("Cannot check out: cart is empty", logger.Fields{
			"session_id": input.SessionID,
		})
		return nil, ErrEmptyCart
	}

	subtotal := ledger.Subtotal()
	if ledger.Promo != nil {
		validation, err := s.promoService.Validate(ctx, ledger.Promo.Code, subtotal)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			logger.Warn("Applied promo code no longer valid at checkout", logger.Fields{
				"session_id": input.SessionID,
				"code":       ledger.Promo.Code,
				"reason":     validation.Reason,
			})
			if _, err := s.cartService.RemovePromo(ctx, input.SessionID); err != nil {
				return nil, err
			}
			return nil, ErrPromoNoLongerValid
		}
		ledger.ApplyPromo(validation.Applied())
	}

	orderItems := make([]model.OrderItem, 0, len(ledger.Items))
	for _, item := range ledger.Items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      string(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := &model.Order{
		UserID:     input.UserID,
		SessionID:  input.SessionID,
		Email:      email,
		Subtotal:   subtotal,
		Discount:   ledger.Discount(),
		Total:      ledger.FinalTotal(),
		Status:     model.OrderStatusPending,
		OrderItems: orderItems,
	}
	if ledger.Promo != nil {
		order.PromoCode = ledger.Promo.Code
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), logger.Fields{
				"session_id": input.SessionID,
			})
		}
	}()

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, logger.Fields{
			"session_id": input.SessionID,
			"total":      order.Total.String(),
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, logger.Fields{
			"session_id": input.SessionID,
			"order_id":   order.ID,
		})
		return nil, err
	}

	if _, err := s.cartService.Clear(ctx, input.SessionID); err != nil {
		logger.Warn("Order created but cart could not be cleared", logger.Fields{
			"session_id": input.SessionID,
			"order_id":   order.ID,
			"error":      err.Error(),
		})
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.EventOrderCreated, created)

	logger.Info("Order created successfully", logger.Fields{
		"order_id":   created.ID,
		"session_id": input.SessionID,
		"total":      created.Total.String(),
		"item_count": len(created.OrderItems),
	})
	return created, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, logger.Fields{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// GetOrderByID returns the order only when it belongs to userID.
func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.UserID == nil || *order.UserID != userID {
		logger.Warn("Order access denied", logger.Fields{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}
	return s.orderRepo.FindAll(status)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	status = model.OrderStatus(strings.TrimSpace(string(status)))
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to update order status", err, logger.Fields{
			"order_id": orderID,
		})
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.EventOrderStatusChanged, order)

	logger.Info("Order status updated", logger.Fields{
		"order_id": orderID,
		"status":   status,
	})
	return order, nil
}
