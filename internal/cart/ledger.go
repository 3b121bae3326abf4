// Package cart implements the shopping cart ledger: the ordered list of
// line items held for one browsing session, the single promo applied to
// it, and the totals derived from both.
//
// A Ledger never fails. Bad quantities are coerced, missing lines are
// no-ops, and unparseable prices count as zero.
package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Size is a garment size.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists the sizes in display order.
var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// NormalizeSize upper-cases and trims s and reports whether it is a known size.
func NormalizeSize(s string) (Size, bool) {
	size := Size(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Sizes {
		if size == known {
			return size, true
		}
	}
	return size, false
}

// ShippingPlaceholder is shown instead of a shipping amount.
const ShippingPlaceholder = "Calculated at checkout"

// LineItem is one (product, size) pairing in the cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      Size            `json:"size"`
	Quantity  int             `json:"quantity"`
}

// UnitPriceDisplay is the formatted unit price, e.g. "$140.00".
func (li LineItem) UnitPriceDisplay() string {
	return money.Format(li.UnitPrice)
}

// LineTotal is unit price times quantity, rounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return money.Round(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
}

func (li LineItem) matches(productID string, size Size) bool {
	return li.ProductID == productID && li.Size == size
}

// AppliedPromo is the promo attached to the cart after a successful validation.
type AppliedPromo struct {
	Code          string          `json:"code"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// Ledger is the cart state for one session. The zero value is an empty cart.
type Ledger struct {
	Items     []LineItem    `json:"items"`
	Promo     *AppliedPromo `json:"applied_promo,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{Items: []LineItem{}}
}

func (l *Ledger) find(productID string, size Size) int {
	for i := range l.Items {
		if l.Items[i].matches(productID, size) {
			return i
		}
	}
	return -1
}

func (l *Ledger) touch() {
	l.UpdatedAt = time.Now().UTC()
}

// AddItem appends item, or increments the quantity of the line with the
// same product and size. A quantity below 1 counts as 1.
func (l *Ledger) AddItem(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if i := l.find(item.ProductID, item.Size); i >= 0 {
		l.Items[i].Quantity += item.Quantity
	} else {
		l.Items = append(l.Items, item)
	}
	l.touch()
}

// RemoveItem deletes the matching line. Missing lines are ignored.
func (l *Ledger) RemoveItem(productID string, size Size) {
	i := l.find(productID, size)
	if i < 0 {
		return
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	l.touch()
}

// UpdateQuantity sets the quantity of the matching line, coercing values
// below 1 to 1. Missing lines are ignored.
func (l *Ledger) UpdateQuantity(productID string, size Size, quantity int) {
	i := l.find(productID, size)
	if i < 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	l.Items[i].Quantity = quantity
	l.touch()
}

// Clear empties the cart and drops any applied promo.
func (l *Ledger) Clear() {
	l.Items = []LineItem{}
	l.Promo = nil
	l.touch()
}

// IsEmpty reports whether the cart has no lines.
func (l *Ledger) IsEmpty() bool {
	return len(l.Items) == 0
}

// Subtotal sums the line totals before discount and shipping.
func (l *Ledger) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money.Round(total)
}

// ItemCount is the sum of quantities, used for the cart badge.
func (l *Ledger) ItemCount() int {
	count := 0
	for _, item := range l.Items {
		count += item.Quantity
	}
	return count
}

// ApplyPromo replaces any previously applied promo.
func (l *Ledger) ApplyPromo(p AppliedPromo) {
	l.Promo = &p
	l.touch()
}

// RemovePromo detaches the applied promo, if any.
func (l *Ledger) RemovePromo() {
	l.Promo = nil
	l.touch()
}

// HasPromo reports whether code is the promo currently applied.
func (l *Ledger) HasPromo(code string) bool {
	return l.Promo != nil && l.Promo.Code == code
}

// Discount is the applied promo discount, or zero. It never exceeds the subtotal.
func (l *Ledger) Discount() decimal.Decimal {
	if l.Promo == nil {
		return decimal.Zero
	}
	return money.Min(money.Round(l.Promo.Discount), l.Subtotal())
}

// FinalTotal is subtotal minus discount, never below zero. Shipping is not included.
func (l *Ledger) FinalTotal() decimal.Decimal {
	return money.NonNegative(l.Subtotal().Sub(l.Discount()))
}

// CoerceQuantity turns loosely typed input into a quantity of at least 1.
// Fractions are truncated; non-numeric input becomes 1.
func CoerceQuantity(v interface{}) int {
	var f float64
	switch q := v.(type) {
	case int:
		f = float64(q)
	case int64:
		f = float64(q)
	case float64:
		f = q
	case json.Number:
		parsed, err := q.Float64()
		if err != nil {
			return 1
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
