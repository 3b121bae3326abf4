package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/cart"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPromoLookupFailed = errors.New("promo code lookup failed")
	ErrPromoCodeNotFound = errors.New("promo code not found")
	ErrPromoCodeExists   = errors.New("promo code already exists")
	ErrInvalidPromoCode  = errors.New("invalid promo code")
)

const maxPromoCodeLength = 50

// PromoReason says why a code was not applied.
type PromoReason string

const (
	ReasonEmptyCode            PromoReason = "EmptyCode"
	ReasonNotFound             PromoReason = "NotFound"
	ReasonInactiveOrExpired    PromoReason = "InactiveOrExpired"
	ReasonBelowMinimumPurchase PromoReason = "BelowMinimumPurchase"
	ReasonAlreadyApplied       PromoReason = "AlreadyApplied"
)

// PromoValidation is the outcome of checking a code against a subtotal.
// Business rule failures are reported here, never as errors.
type PromoValidation struct {
	Valid    bool
	Reason   PromoReason
	Message  string
	Discount decimal.Decimal
	Promo    *model.PromoCode
}

func invalidPromo(reason PromoReason, message string) *PromoValidation {
	return &PromoValidation{Reason: reason, Message: message}
}

// Applied converts a valid result into the cart's applied promo.
func (v *PromoValidation) Applied() cart.AppliedPromo {
	return cart.AppliedPromo{
		Code:          v.Promo.Code,
		Discount:      v.Discount,
		DiscountType:  string(v.Promo.DiscountType),
		DiscountValue: v.Promo.DiscountValue,
	}
}

// NormalizePromoCode trims and upper-cases a submitted code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PromoCodeInput is the full editable field set of a promo code.
type PromoCodeInput struct {
	Code              string
	Description       string
	DiscountType      model.DiscountType
	DiscountValue     decimal.Decimal
	MinPurchaseAmount decimal.Decimal
	MaxDiscountAmount decimal.NullDecimal
	StartDate         time.Time
	EndDate           time.Time
	IsActive          bool
	UsageLimit        *int
}

type PromoService interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoValidation, error)
	List() ([]model.PromoCode, error)
	Get(id uint) (*model.PromoCode, error)
	Create(input PromoCodeInput) (*model.PromoCode, error)
	Update(id uint, input PromoCodeInput) (*model.PromoCode, error)
	Delete(id uint) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type promoService struct {
	promoRepo repository.PromoCodeRepository
	now       func() time.Time
}

// NewPromoService builds the validator. A nil clock uses time.Now.
func NewPromoService(promoRepo repository.PromoCodeRepository, clock func() time.Time) PromoService {
	if clock == nil {
		clock = time.Now
	}
	return &promoService{promoRepo: promoRepo, now: clock}
}

func (s *promoService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoValidation, error) {
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return invalidPromo(ReasonEmptyCode, "Please enter a promo code"), nil
	}

	promo, err := s.promoRepo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("Promo code not found", logger.Fields{
				"code": normalized,
			})
			return invalidPromo(ReasonNotFound, "Invalid promo code"), nil
		}
		logger.Error("Failed to look up promo code", err, logger.Fields{
			"code": normalized,
		})
		return nil, fmt.Errorf("%w: %v", ErrPromoLookupFailed, err)
	}

	if !promo.IsUsableAt(s.now()) {
		logger.Info("Promo code inactive or expired", logger.Fields{
			"code":      normalized,
			"is_active": promo.IsActive,
		})
		return invalidPromo(ReasonInactiveOrExpired, "This promo code has expired or is no longer active"), nil
	}

	if !promo.MeetsMinimum(subtotal) {
		return invalidPromo(ReasonBelowMinimumPurchase,
			fmt.Sprintf("Minimum purchase of %s required", money.Format(promo.MinPurchaseAmount))), nil
	}

	discount := promo.DiscountFor(subtotal)

	logger.Info("Promo code validated", logger.Fields{
		"code":     promo.Code,
		"subtotal": subtotal.StringFixed(money.Places),
		"discount": discount.StringFixed(money.Places),
	})
	return &PromoValidation{Valid: true, Discount: discount, Promo: promo}, nil
}

func (s *promoService) List() ([]model.PromoCode, error) {
	return s.promoRepo.FindAll()
}

func (s *promoService) Get(id uint) (*model.PromoCode, error) {
	promo, err := s.promoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoCodeNotFound
		}
		return nil, err
	}
	return promo, nil
}

func (s *promoService) Create(input PromoCodeInput) (*model.PromoCode, error) {
	input.Code = NormalizePromoCode(input.Code)
	logger.Info("Creating promo code", logger.Fields{
		"code":          input.Code,
		"discount_type": input.DiscountType,
	})

	if err := validatePromoInput(input); err != nil {
		logger.Warn("Promo code rejected", logger.Fields{
			"code":  input.Code,
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.ensureCodeAvailable(input.Code, 0); err != nil {
		return nil, err
	}

	promo := &model.PromoCode{}
	applyPromoInput(promo, input)

	if err := s.promoRepo.Create(promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPromoCodeExists
		}
		logger.Error("Failed to create promo code", err, logger.Fields{
			"code": input.Code,
		})
		return nil, err
	}

	logger.Info("Promo code created", logger.Fields{
		"promo_id": promo.ID,
		"code":     promo.Code,
	})
	return promo, nil
}

func (s *promoService) Update(id uint, input PromoCodeInput) (*model.PromoCode, error) {
	input.Code = NormalizePromoCode(input.Code)
	logger.Info("Updating promo code", logger.Fields{
		"promo_id": id,
		"code":     input.Code,
	})

	if err := validatePromoInput(input); err != nil {
		return nil, err
	}

	promo, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if promo.Code != input.Code {
		if err := s.ensureCodeAvailable(input.Code, id); err != nil {
			return nil, err
		}
	}

	applyPromoInput(promo, input)
	if err := s.promoRepo.Update(promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPromoCodeExists
		}
		logger.Error("Failed to update promo code", err, logger.Fields{
			"promo_id": id,
		})
		return nil, err
	}

	logger.Info("Promo code updated", logger.Fields{
		"promo_id": id,
		"code":     promo.Code,
	})
	return promo, nil
}

func (s *promoService) Delete(id uint) error {
	if err := s.promoRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromoCodeNotFound
		}
		logger.Error("Failed to delete promo code", err, logger.Fields{
			"promo_id": id,
		})
		return err
	}

	logger.Info("Promo code deleted", logger.Fields{
		"promo_id": id,
	})
	return nil
}

func (s *promoService) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.promoRepo.DeactivateExpired(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Deactivated expired promo codes", logger.Fields{
			"count": count,
		})
	}
	return count, nil
}

func (s *promoService) ensureCodeAvailable(code string, selfID uint) error {
	existing, err := s.promoRepo.FindByCode(context.Background(), code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		logger.Warn("Promo code already exists", logger.Fields{
			"code": code,
		})
		return ErrPromoCodeExists
	}
	return nil
}

func validatePromoInput(input PromoCodeInput) error {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrInvalidPromoCode, reason)
	}

	switch {
	case input.Code == "":
		return invalid("code is required")
	case len(input.Code) > maxPromoCodeLength:
		return invalid(fmt.Sprintf("code must be at most %d characters", maxPromoCodeLength))
	case !input.DiscountType.IsValid():
		return invalid("discount type must be percentage or fixed")
	case input.DiscountValue.IsNegative():
		return invalid("discount value must not be negative")
	case input.DiscountType == model.DiscountPercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)):
		return invalid("percentage discount must not exceed 100")
	case input.MinPurchaseAmount.IsNegative():
		return invalid("minimum purchase must not be negative")
	case input.MaxDiscountAmount.Valid && input.MaxDiscountAmount.Decimal.IsNegative():
		return invalid("maximum discount must not be negative")
	case input.StartDate.IsZero() || input.EndDate.IsZero():
		return invalid("start and end dates are required")
	case input.EndDate.Before(input.StartDate):
		return invalid("end date must not be before start date")
	case input.UsageLimit != nil && *input.UsageLimit < 0:
		return invalid("usage limit must not be negative")
	}
	return nil
}

func applyPromoInput(promo *model.PromoCode, input PromoCodeInput) {
	promo.Code = input.Code
	promo.Description = strings.TrimSpace(input.Description)
	promo.DiscountType = input.DiscountType
	promo.DiscountValue = money.Round(input.DiscountValue)
	promo.MinPurchaseAmount = money.Round(input.MinPurchaseAmount)
	promo.MaxDiscountAmount = input.MaxDiscountAmount
	if promo.MaxDiscountAmount.Valid {
		promo.MaxDiscountAmount.Decimal = money.Round(promo.MaxDiscountAmount.Decimal)
	}
	promo.StartDate = input.StartDate.UTC()
	promo.EndDate = input.EndDate.UTC()
	promo.IsActive = input.IsActive
	promo.UsageLimit = input.UsageLimit
}
