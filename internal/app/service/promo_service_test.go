package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPromoServiceTest(t *testing.T) (PromoService, *gorm.DB) {
	testDB := setupTestDB(t)
	return NewPromoService(repository.NewPromoCodeRepository(testDB), fixedClock), testDB
}

func TestPromoService_Validate(t *testing.T) {
	svc, testDB := setupPromoServiceTest(t)
	createPromo(t, testDB, save10())
	createPromo(t, testDB, flat50())

	inactive := save10()
	inactive.Code = "OFF"
	inactive.IsActive = false
	createPromo(t, testDB, inactive)

	expired := save10()
	expired.Code = "OLD"
	expired.StartDate = testNow.AddDate(-1, 0, 0)
	expired.EndDate = testNow.Add(-1)
	createPromo(t, testDB, expired)

	future := save10()
	future.Code = "SOON"
	future.StartDate = testNow.AddDate(0, 0, 1)
	future.EndDate = testNow.AddDate(0, 1, 0)
	createPromo(t, testDB, future)

	tests := []struct {
		name         string
		code         string
		subtotal     string
		wantValid    bool
		wantReason   PromoReason
		wantMessage  string
		wantDiscount string
	}{
		{name: "Percentage code", code: "SAVE10", subtotal: "200", wantValid: true, wantDiscount: "20.00"},
		{name: "Code is normalized", code: "  save10 ", subtotal: "200", wantValid: true, wantDiscount: "20.00"},
		{name: "Fixed code above minimum", code: "FLAT50", subtotal: "150", wantValid: true, wantDiscount: "50.00"},
		{name: "Fixed code at minimum", code: "FLAT50", subtotal: "100", wantValid: true, wantDiscount: "50.00"},
		{name: "Fixed code below minimum", code: "FLAT50", subtotal: "80", wantReason: ReasonBelowMinimumPurchase, wantMessage: "Minimum purchase of $100.00 required"},
		{name: "Empty code", code: "   ", subtotal: "200", wantReason: ReasonEmptyCode, wantMessage: "Please enter a promo code"},
		{name: "Unknown code", code: "NOPE", subtotal: "200", wantReason: ReasonNotFound, wantMessage: "Invalid promo code"},
		{name: "Inactive code", code: "OFF", subtotal: "200", wantReason: ReasonInactiveOrExpired, wantMessage: "This promo code has expired or is no longer active"},
		{name: "Expired code", code: "OLD", subtotal: "200", wantReason: ReasonInactiveOrExpired},
		{name: "Not started", code: "SOON", subtotal: "200", wantReason: ReasonInactiveOrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Validate(context.Background(), tt.code, dec(tt.subtotal))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)

			if tt.wantValid {
				assert.Equal(t, tt.wantDiscount, result.Discount.StringFixed(2))
				require.NotNil(t, result.Promo)
				return
			}
			assert.Equal(t, tt.wantReason, result.Reason)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, result.Message)
			}
		})
	}
}

func TestPromoService_Validate_InclusiveBounds(t *testing.T) {
	testDB := setupTestDB(t)
	repo := repository.NewPromoCodeRepository(testDB)

	promo := save10()
	promo.StartDate = testNow
	promo.EndDate = testNow.AddDate(0, 0, 7)
	createPromo(t, testDB, promo)

	atStart := NewPromoService(repo, func() time.Time { return promo.StartDate })
	result, err := atStart.Validate(context.Background(), "SAVE10", dec("50"))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	atEnd := NewPromoService(repo, func() time.Time { return promo.EndDate })
	result, err = atEnd.Validate(context.Background(), "SAVE10", dec("50"))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	afterEnd := NewPromoService(repo, func() time.Time { return promo.EndDate.Add(time.Second) })
	result, err = afterEnd.Validate(context.Background(), "SAVE10", dec("50"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonInactiveOrExpired, result.Reason)
}

func TestPromoService_Validate_CapAndSubtotalClamp(t *testing.T) {
	svc, testDB := setupPromoServiceTest(t)

	capped := save10()
	capped.Code = "HALF"
	capped.DiscountValue = dec("50")
	capped.MaxDiscountAmount = decimal.NewNullDecimal(dec("30"))
	createPromo(t, testDB, capped)

	big := flat50()
	big.Code = "BIG"
	big.MinPurchaseAmount = decimal.Zero
	createPromo(t, testDB, big)

	result, err := svc.Validate(context.Background(), "HALF", dec("200"))
	require.NoError(t, err)
	assert.Equal(t, "30.00", result.Discount.StringFixed(2))

	result, err = svc.Validate(context.Background(), "BIG", dec("20"))
	require.NoError(t, err)
	assert.Equal(t, "20.00", result.Discount.StringFixed(2))
}

func TestPromoService_Validate_LookupFailure(t *testing.T) {
	svc, testDB := setupPromoServiceTest(t)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	result, err := svc.Validate(context.Background(), "SAVE10", dec("200"))
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrPromoLookupFailed))
}

func validInput(code string) PromoCodeInput {
	return PromoCodeInput{
		Code:          code,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: dec("15"),
		StartDate:     testNow.AddDate(0, 0, -1),
		EndDate:       testNow.AddDate(0, 1, 0),
		IsActive:      true,
	}
}

func TestPromoService_Create(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)

	promo, err := svc.Create(validInput("  summer15 "))
	require.NoError(t, err)
	assert.NotZero(t, promo.ID)
	assert.Equal(t, "SUMMER15", promo.Code)

	_, err = svc.Create(validInput("SUMMER15"))
	assert.ErrorIs(t, err, ErrPromoCodeExists)

	result, err := svc.Validate(context.Background(), "summer15", dec("100"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "15.00", result.Discount.StringFixed(2))
}

func TestPromoService_Create_Invalid(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)

	tests := []struct {
		name   string
		mutate func(*PromoCodeInput)
	}{
		{name: "Empty code", mutate: func(in *PromoCodeInput) { in.Code = " " }},
		{name: "Unknown type", mutate: func(in *PromoCodeInput) { in.DiscountType = "bogo" }},
		{name: "Negative value", mutate: func(in *PromoCodeInput) { in.DiscountValue = dec("-1") }},
		{name: "Percentage over 100", mutate: func(in *PromoCodeInput) { in.DiscountValue = dec("101") }},
		{name: "Negative minimum", mutate: func(in *PromoCodeInput) { in.MinPurchaseAmount = dec("-5") }},
		{name: "End before start", mutate: func(in *PromoCodeInput) { in.EndDate = in.StartDate.Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput("BAD")
			tt.mutate(&input)
			_, err := svc.Create(input)
			assert.ErrorIs(t, err, ErrInvalidPromoCode)
		})
	}
}

func TestPromoService_UpdateAndDelete(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)

	first, err := svc.Create(validInput("FIRST"))
	require.NoError(t, err)
	_, err = svc.Create(validInput("SECOND"))
	require.NoError(t, err)

	input := validInput("FIRST")
	input.DiscountType = model.DiscountFixed
	input.DiscountValue = dec("25")
	updated, err := svc.Update(first.ID, input)
	require.NoError(t, err)
	assert.Equal(t, model.DiscountFixed, updated.DiscountType)

	_, err = svc.Update(first.ID, validInput("second"))
	assert.ErrorIs(t, err, ErrPromoCodeExists)

	_, err = svc.Update(9999, validInput("THIRD"))
	assert.ErrorIs(t, err, ErrPromoCodeNotFound)

	require.NoError(t, svc.Delete(first.ID))
	assert.ErrorIs(t, svc.Delete(first.ID), ErrPromoCodeNotFound)

	_, err = svc.Get(first.ID)
	assert.ErrorIs(t, err, ErrPromoCodeNotFound)

	promos, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, promos, 1)
}

func TestPromoService_DeactivateExpired(t *testing.T) {
	svc, testDB := setupPromoServiceTest(t)

	expired := save10()
	expired.EndDate = testNow.Add(-time.Hour)
	expired.StartDate = testNow.AddDate(0, -1, 0)
	createPromo(t, testDB, expired)
	createPromo(t, testDB, flat50())

	count, err := svc.DeactivateExpired(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	promo, err := svc.Get(expired.ID)
	require.NoError(t, err)
	assert.False(t, promo.IsActive)
}
