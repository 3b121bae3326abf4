package service

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createPromo(t *testing.T, testDB *gorm.DB, promo *model.PromoCode) *model.PromoCode {
	if promo.StartDate.IsZero() {
		promo.StartDate = testNow.AddDate(0, -1, 0)
	}
	if promo.EndDate.IsZero() {
		promo.EndDate = testNow.AddDate(0, 1, 0)
	}
	require.NoError(t, testDB.Create(promo).Error)
	return promo
}

func save10() *model.PromoCode {
	return &model.PromoCode{
		Code:          "SAVE10",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: dec("10"),
		IsActive:      true,
	}
}

func flat50() *model.PromoCode {
	return &model.PromoCode{
		Code:              "FLAT50",
		DiscountType:      model.DiscountFixed,
		DiscountValue:     dec("50"),
		MinPurchaseAmount: dec("100"),
		IsActive:          true,
	}
}

type fakeMailer struct {
	mu        sync.Mutex
	welcome   []string
	inquiries []string
	err       error
}

func (m *fakeMailer) SendWelcomeEmail(toEmail, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, toEmail)
	return m.err
}

func (m *fakeMailer) SendInquiryConfirmation(toEmail, firstName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inquiries = append(m.inquiries, toEmail)
	return m.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
