package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// AddToCartRequest accepts price and quantity as numbers or strings.
type AddToCartRequest struct {
	ProductID string      `json:"product_id" binding:"required"`
	Name      string      `json:"name"`
	ImageURL  string      `json:"image_url"`
	Price     interface{} `json:"price"`
	Size      string      `json:"size" binding:"required"`
	Quantity  interface{} `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ProductID string      `json:"product_id" binding:"required"`
	Size      string      `json:"size" binding:"required"`
	Quantity  interface{} `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"product_id" form:"product_id" binding:"required"`
	Size      string `json:"size" form:"size" binding:"required"`
}

type ApplyPromoRequest struct {
	Code string `json:"code"`
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.GetCartSessionID(c)

	view, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		ctrl.respondError(c, err, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": view})
}

// AddToCart adds a line or bumps the quantity of an existing one
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.CartInvalidItem, "product_id and size are required")
		return
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), middleware.GetCartSessionID(c), service.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		Price:     req.Price,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		ctrl.respondError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"cart":    view,
	})
}

// UpdateCartItem sets the quantity of a line
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.CartInvalidItem, "product_id and size are required")
		return
	}

	view, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetCartSessionID(c), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		ctrl.respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"cart":    view,
	})
}

// RemoveFromCart deletes a line; product_id and size come from the query string
// DELETE /api/v1/cart/items?product_id=..&size=..
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	var req RemoveCartItemRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apperrors.BadRequest(c, apperrors.CartInvalidItem, "product_id and size are required")
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetCartSessionID(c), req.ProductID, req.Size)
	if err != nil {
		ctrl.respondError(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"cart":    view,
	})
}

// ClearCart empties the cart and drops the promo
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view, err := ctrl.cartService.Clear(c.Request.Context(), middleware.GetCartSessionID(c))
	if err != nil {
		ctrl.respondError(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"cart":    view,
	})
}

// ApplyPromo validates a code against the cart subtotal and attaches it.
// A rejected code answers 200 with valid=false and the cart unchanged.
// POST /api/v1/cart/promo
func (ctrl *CartController) ApplyPromo(c *gin.Context) {
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	result, err := ctrl.cartService.ApplyPromo(c.Request.Context(), middleware.GetCartSessionID(c), req.Code)
	if err != nil {
		ctrl.respondError(c, err, "Failed to validate promo code. Please try again.")
		return
	}

	if !result.Validation.Valid {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"error":  result.Validation.Message,
			"reason": result.Validation.Reason,
			"cart":   result.Cart,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"discount": result.Validation.Discount,
		"cart":     result.Cart,
	})
}

// RemovePromo detaches the applied promo
// DELETE /api/v1/cart/promo
func (ctrl *CartController) RemovePromo(c *gin.Context) {
	view, err := ctrl.cartService.RemovePromo(c.Request.Context(), middleware.GetCartSessionID(c))
	if err != nil {
		ctrl.respondError(c, err, "Failed to remove promo code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code removed",
		"cart":    view,
	})
}

func (ctrl *CartController) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidSize):
		apperrors.BadRequest(c, apperrors.CartInvalidSize, "Size must be one of XS, S, M, L, XL, XXL")
	case errors.Is(err, service.ErrInvalidCartItem):
		apperrors.BadRequest(c, apperrors.CartInvalidItem, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error(fallback, err, map[string]interface{}{
			"session_id": middleware.GetCartSessionID(c),
		})
		apperrors.InternalError(c, fallback)
	}
}
