package model

import (
	"time"

	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// PromoCode is an administrator-defined discount rule. Deletion is permanent.
type PromoCode struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	Code              string              `gorm:"uniqueIndex;size:50;not null" json:"code"` // trimmed, upper-case
	Description       string              `gorm:"type:text" json:"description"`
	DiscountType      DiscountType        `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinPurchaseAmount decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"min_purchase_amount"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_discount_amount"`
	StartDate         time.Time           `gorm:"not null" json:"start_date"`
	EndDate           time.Time           `gorm:"not null;index" json:"end_date"`
	IsActive          bool                `gorm:"not null" json:"is_active"`
	UsageLimit        *int                `json:"usage_limit"` // stored, not enforced
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}

// IsUsableAt reports whether the code is active and now falls within
// [StartDate, EndDate], both ends inclusive.
func (p *PromoCode) IsUsableAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// MeetsMinimum reports whether subtotal reaches the minimum purchase.
func (p *PromoCode) MeetsMinimum(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(p.MinPurchaseAmount)
}

// DiscountFor computes the discount for subtotal: percentage or fixed
// amount, clamped to the cap when one is set, then to the subtotal.
// The result is rounded to cents and never negative.
func (p *PromoCode) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		discount = p.DiscountValue
	default:
		return decimal.Zero
	}

	if p.MaxDiscountAmount.Valid && discount.GreaterThan(p.MaxDiscountAmount.Decimal) {
		discount = p.MaxDiscountAmount.Decimal
	}
	discount = money.Min(discount, subtotal)

	return money.NonNegative(money.Round(discount))
}
