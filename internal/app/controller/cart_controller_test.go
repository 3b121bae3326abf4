package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/internal/cache"
	"github.com/jerseylab/jerseylab-backend/internal/cart"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type cartTestEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	session map[string]string
}

func setupCartControllerTest(t *testing.T) *cartTestEnv {
	testDB := setupTestDB(t)

	promoService := service.NewPromoService(repository.NewPromoCodeRepository(testDB), fixedClock)
	catalogService := service.NewCatalogService(repository.NewCategoryRepository(testDB), cache.NewMemoryStore(), service.DefaultCatalogTTL)
	cartService := service.NewCartService(cart.NewMemoryStore(24*time.Hour), promoService, catalogService)
	orderService := service.NewOrderService(repository.NewOrderRepository(testDB), cartService, promoService, nil, testDB)

	cartCtrl := NewCartController(cartService)
	orderCtrl := NewOrderController(orderService)
	authMiddleware := middleware.NewAuthMiddleware(testSecret)

	router := gin.New()
	cartGroup := router.Group("/cart", middleware.CartSession())
	{
		cartGroup.GET("", cartCtrl.GetCart)
		cartGroup.DELETE("", cartCtrl.ClearCart)
		cartGroup.POST("/items", cartCtrl.AddToCart)
		cartGroup.PUT("/items", cartCtrl.UpdateCartItem)
		cartGroup.DELETE("/items", cartCtrl.RemoveFromCart)
		cartGroup.POST("/promo", cartCtrl.ApplyPromo)
		cartGroup.DELETE("/promo", cartCtrl.RemovePromo)
		cartGroup.POST("/checkout", authMiddleware.OptionalAuthenticate(), orderCtrl.Checkout)
	}
	router.GET("/orders", authMiddleware.Authenticate(), orderCtrl.GetOrders)
	router.GET("/orders/:id", authMiddleware.Authenticate(), orderCtrl.GetOrderByID)
	router.GET("/admin/orders", orderCtrl.ListOrders)
	router.PUT("/admin/orders/:id/status", orderCtrl.UpdateOrderStatus)

	return &cartTestEnv{
		router:  router,
		db:      testDB,
		session: map[string]string{middleware.CartSessionHeader: uuid.NewString()},
	}
}

func (env *cartTestEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	rec := performRequest(env.router, method, path, body, env.session)
	assert.Equal(t, env.session[middleware.CartSessionHeader], rec.Header().Get(middleware.CartSessionHeader))
	return rec.Code, decodeBody(t, rec)
}

func cartOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	c, ok := response["cart"].(map[string]interface{})
	require.True(t, ok, "response has no cart: %v", response)
	return c
}

func TestCartController_NewSessionIsIssued(t *testing.T) {
	env := setupCartControllerTest(t)

	w := performRequest(env.router, "GET", "/cart", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	sessionID := w.Header().Get(middleware.CartSessionHeader)
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err)

	view := cartOf(t, decodeBody(t, w))
	assert.Equal(t, sessionID, view["session_id"])
	assert.Empty(t, view["items"])
	assert.Equal(t, 0.0, view["subtotal"])
	assert.Equal(t, "Calculated at checkout", view["shipping"])
}

func TestCartController_ItemLifecycle(t *testing.T) {
	env := setupCartControllerTest(t)

	status, response := env.do(t, "POST", "/cart/items", gin.H{
		"product_id": "pro-1",
		"name":       "Pro Jersey",
		"price":      "$140.00",
		"size":       "m",
		"quantity":   "2",
	})
	require.Equal(t, http.StatusOK, status)
	view := cartOf(t, response)
	assert.Equal(t, 280.0, view["subtotal"])
	assert.Equal(t, 2.0, view["item_count"])

	items := view["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "M", item["size"])
	assert.Equal(t, "$140.00", item["unit_price_display"])

	// Same product in another size is its own line
	status, response = env.do(t, "POST", "/cart/items", gin.H{"product_id": "pro-1", "name": "Pro Jersey", "price": 140, "size": "L"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, cartOf(t, response)["items"], 2)

	status, response = env.do(t, "PUT", "/cart/items", gin.H{"product_id": "pro-1", "size": "L", "quantity": 0})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3.0, cartOf(t, response)["item_count"])

	status, response = env.do(t, "DELETE", "/cart/items?product_id=pro-1&size=M", nil)
	require.Equal(t, http.StatusOK, status)
	view = cartOf(t, response)
	assert.Len(t, view["items"], 1)
	assert.Equal(t, 140.0, view["subtotal"])

	status, response = env.do(t, "DELETE", "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cartOf(t, response)["items"])
}

func TestCartController_AddItem_Invalid(t *testing.T) {
	env := setupCartControllerTest(t)

	status, response := env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 10, "size": "XXXL"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CART_INVALID_SIZE", response["error"])

	status, _ = env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "price": 10, "size": "M"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, "POST", "/cart/items", gin.H{"name": "Jersey", "size": "M"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCartController_CatalogProductUsesCatalogPrice(t *testing.T) {
	env := setupCartControllerTest(t)

	category := &model.Category{
		Key:   "professionalAthletes",
		Title: "Professional Athletes",
		Products: []model.Product{
			{Title: "Home Jersey", Price: decimal.RequireFromString("99.50"), Status: model.ProductStatusActive},
			{Title: "Retro Jersey", Price: decimal.RequireFromString("80"), Status: model.ProductStatusComingSoon},
		},
	}
	require.NoError(t, env.db.Create(category).Error)

	status, response := env.do(t, "POST", "/cart/items", gin.H{
		"product_id": uintPath(category.Products[0].ID),
		"price":      1,
		"size":       "S",
	})
	require.Equal(t, http.StatusOK, status)
	view := cartOf(t, response)
	assert.Equal(t, 99.5, view["subtotal"])
	item := view["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Home Jersey", item["name"])

	status, _ = env.do(t, "POST", "/cart/items", gin.H{
		"product_id": uintPath(category.Products[1].ID),
		"size":       "S",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCartController_ApplyPromo(t *testing.T) {
	env := setupCartControllerTest(t)
	createPromo(t, env.db, "SAVE10", model.DiscountPercentage, "10", "0")
	createPromo(t, env.db, "FLAT50", model.DiscountFixed, "50", "100")

	status, _ := env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 40, "size": "M", "quantity": 2})
	require.Equal(t, http.StatusOK, status)

	// 80 is below FLAT50's minimum: nothing applied
	status, response := env.do(t, "POST", "/cart/promo", gin.H{"code": "flat50"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, response["valid"])
	assert.Equal(t, "BelowMinimumPurchase", response["reason"])
	assert.Nil(t, cartOf(t, response)["applied_promo"])
	assert.Equal(t, 80.0, cartOf(t, response)["total"])

	status, _ = env.do(t, "PUT", "/cart/items", gin.H{"product_id": "p1", "size": "M", "quantity": 5})
	require.Equal(t, http.StatusOK, status)

	status, response = env.do(t, "POST", "/cart/promo", gin.H{"code": "SAVE10"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, response["valid"])
	assert.Equal(t, 20.0, response["discount"])
	view := cartOf(t, response)
	assert.Equal(t, 200.0, view["subtotal"])
	assert.Equal(t, 20.0, view["discount"])
	assert.Equal(t, 180.0, view["total"])

	status, response = env.do(t, "POST", "/cart/promo", gin.H{"code": "save10"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "AlreadyApplied", response["reason"])

	// Replacing SAVE10 with FLAT50
	status, response = env.do(t, "POST", "/cart/promo", gin.H{"code": "FLAT50"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 150.0, cartOf(t, response)["total"])

	status, response = env.do(t, "DELETE", "/cart/promo", nil)
	require.Equal(t, http.StatusOK, status)
	view = cartOf(t, response)
	assert.Nil(t, view["applied_promo"])
	assert.Equal(t, 200.0, view["total"])
}

func TestCartController_SessionsAreIsolated(t *testing.T) {
	env := setupCartControllerTest(t)

	status, _ := env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 40, "size": "M"})
	require.Equal(t, http.StatusOK, status)

	other := map[string]string{middleware.CartSessionHeader: uuid.NewString()}
	w := performRequest(env.router, "GET", "/cart", nil, other)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartOf(t, decodeBody(t, w))["items"])
}

func TestOrderController_Checkout(t *testing.T) {
	env := setupCartControllerTest(t)
	createPromo(t, env.db, "SAVE10", model.DiscountPercentage, "10", "0")
	user := createUser(t, env.db, "fan@example.com", model.RoleCustomer)

	status, response := env.do(t, "POST", "/cart/checkout", gin.H{"email": "fan@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CART_EMPTY", response["error"])

	env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 100, "size": "M", "quantity": 2})
	env.do(t, "POST", "/cart/promo", gin.H{"code": "SAVE10"})

	for k, v := range bearer(t, user) {
		env.session[k] = v
	}
	status, response = env.do(t, "POST", "/cart/checkout", gin.H{"email": "fan@example.com"})
	require.Equal(t, http.StatusCreated, status)
	order := response["order"].(map[string]interface{})
	assert.Equal(t, 200.0, order["subtotal"])
	assert.Equal(t, 20.0, order["discount"])
	assert.Equal(t, 180.0, order["total"])
	assert.Equal(t, "SAVE10", order["promo_code"])
	assert.Equal(t, "pending", order["status"])
	assert.Len(t, order["order_items"], 1)

	// Cart is emptied after checkout
	status, response = env.do(t, "GET", "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cartOf(t, response)["items"])

	w := performRequest(env.router, "GET", "/orders", nil, bearer(t, user))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])

	orderPath := "/orders/" + uintPath(uint(order["id"].(float64)))
	w = performRequest(env.router, "GET", orderPath, nil, bearer(t, user))
	assert.Equal(t, http.StatusOK, w.Code)

	stranger := createUser(t, env.db, "other@example.com", model.RoleCustomer)
	w = performRequest(env.router, "GET", orderPath, nil, bearer(t, stranger))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_Checkout_ExpiredPromoIsRemoved(t *testing.T) {
	env := setupCartControllerTest(t)
	promo := createPromo(t, env.db, "SAVE10", model.DiscountPercentage, "10", "0")

	env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 100, "size": "M"})
	status, response := env.do(t, "POST", "/cart/promo", gin.H{"code": "SAVE10"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, response["valid"])

	require.NoError(t, env.db.Model(promo).Update("is_active", false).Error)

	status, response = env.do(t, "POST", "/cart/checkout", gin.H{"email": "guest@example.com"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PROMO_INVALID", response["error"])

	status, response = env.do(t, "GET", "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	view := cartOf(t, response)
	assert.Nil(t, view["applied_promo"])
	assert.Len(t, view["items"], 1)
}

func TestOrderController_AdminStatus(t *testing.T) {
	env := setupCartControllerTest(t)

	env.do(t, "POST", "/cart/items", gin.H{"product_id": "p1", "name": "Jersey", "price": 30, "size": "XS"})
	status, response := env.do(t, "POST", "/cart/checkout", gin.H{"email": "guest@example.com"})
	require.Equal(t, http.StatusCreated, status)
	id := uintPath(uint(response["order"].(map[string]interface{})["id"].(float64)))

	w := performRequest(env.router, "PUT", "/admin/orders/"+id+"/status", gin.H{"status": "shipped"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", decodeBody(t, w)["order"].(map[string]interface{})["status"])

	w = performRequest(env.router, "PUT", "/admin/orders/"+id+"/status", gin.H{"status": "lost"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(env.router, "PUT", "/admin/orders/999/status", gin.H{"status": "shipped"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(env.router, "GET", "/admin/orders?status=shipped", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])

	w = performRequest(env.router, "GET", "/admin/orders?status=pending", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeBody(t, w)["count"])
}
