package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestDB(t *testing.T) *gorm.DB {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func performRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func createUser(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) *model.User {
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func bearer(t *testing.T, user *model.User) map[string]string {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tokens.AccessToken}
}

func createPromo(t *testing.T, testDB *gorm.DB, code string, discountType model.DiscountType, value, minPurchase string) *model.PromoCode {
	promo := &model.PromoCode{
		Code:              code,
		DiscountType:      discountType,
		DiscountValue:     decimal.RequireFromString(value),
		MinPurchaseAmount: decimal.RequireFromString(minPurchase),
		StartDate:         testNow.AddDate(0, -1, 0),
		EndDate:           testNow.AddDate(0, 1, 0),
		IsActive:          true,
	}
	require.NoError(t, testDB.Create(promo).Error)
	return promo
}

func uintPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
