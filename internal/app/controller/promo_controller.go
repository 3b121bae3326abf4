package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"github.com/shopspring/decimal"
)

type PromoController struct {
	promoService service.PromoService
}

func NewPromoController(promoService service.PromoService) *PromoController {
	return &PromoController{
		promoService: promoService,
	}
}

// ValidatePromoRequest is the storefront validation payload. Subtotal may
// arrive as a number or a string.
type ValidatePromoRequest struct {
	Code     string      `json:"code"`
	Subtotal interface{} `json:"subtotal"`
}

type promoSummary struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

// Validate checks a promo code against a subtotal.
// Rule failures are reported with 200 and valid=false.
// POST /api/v1/promo-codes/validate
func (ctrl *PromoController) Validate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if req.Subtotal == nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "subtotal is required")
		return
	}

	subtotal, ok := money.ParseAmount(req.Subtotal)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "subtotal must be a number")
		return
	}
	if subtotal.IsNegative() {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "subtotal must not be negative")
		return
	}

	result, err := ctrl.promoService.Validate(c.Request.Context(), req.Code, subtotal)
	if err != nil {
		log.Error("Promo code validation failed", err, map[string]interface{}{
			"code": req.Code,
		})
		apperrors.InternalError(c, "Failed to validate promo code. Please try again.")
		return
	}

	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"error":  result.Message,
			"reason": result.Reason,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"discount": result.Discount,
		"promoCode": promoSummary{
			Code:          result.Promo.Code,
			DiscountType:  string(result.Promo.DiscountType),
			DiscountValue: result.Promo.DiscountValue,
		},
	})
}

// PromoCodeRequest is the admin create/update payload.
type PromoCodeRequest struct {
	Code              string           `json:"code" binding:"required"`
	Description       string           `json:"description"`
	DiscountType      string           `json:"discount_type" binding:"required"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MinPurchaseAmount decimal.Decimal  `json:"min_purchase_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	StartDate         time.Time        `json:"start_date" binding:"required"`
	EndDate           time.Time        `json:"end_date" binding:"required"`
	IsActive          *bool            `json:"is_active"`
	UsageLimit        *int             `json:"usage_limit"`
}

func (r PromoCodeRequest) toInput() service.PromoCodeInput {
	input := service.PromoCodeInput{
		Code:              r.Code,
		Description:       r.Description,
		DiscountType:      model.DiscountType(r.DiscountType),
		DiscountValue:     r.DiscountValue,
		MinPurchaseAmount: r.MinPurchaseAmount,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		IsActive:          true,
		UsageLimit:        r.UsageLimit,
	}
	if r.MaxDiscountAmount != nil {
		input.MaxDiscountAmount = decimal.NewNullDecimal(*r.MaxDiscountAmount)
	}
	if r.IsActive != nil {
		input.IsActive = *r.IsActive
	}
	return input
}

// ListPromoCodes returns every promo code
// GET /api/v1/admin/promo-codes
func (ctrl *PromoController) ListPromoCodes(c *gin.Context) {
	promos, err := ctrl.promoService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list promo codes", err)
		apperrors.InternalError(c, "Failed to load promo codes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"promo_codes": promos,
		"count":       len(promos),
	})
}

// GetPromoCode returns one promo code
// GET /api/v1/admin/promo-codes/:id
func (ctrl *PromoController) GetPromoCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	promo, err := ctrl.promoService.Get(id)
	if err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"promo_code": promo})
}

// CreatePromoCode adds a promo code
// POST /api/v1/admin/promo-codes
func (ctrl *PromoController) CreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.PromoValidationError, "Invalid promo code: "+err.Error())
		return
	}

	promo, err := ctrl.promoService.Create(req.toInput())
	if err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Promo code created", map[string]interface{}{
		"promo_id": promo.ID,
		"code":     promo.Code,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Promo code created successfully",
		"promo_code": promo,
	})
}

// UpdatePromoCode replaces all editable fields of a promo code
// PUT /api/v1/admin/promo-codes/:id
func (ctrl *PromoController) UpdatePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.PromoValidationError, "Invalid promo code: "+err.Error())
		return
	}

	promo, err := ctrl.promoService.Update(id, req.toInput())
	if err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Promo code updated successfully",
		"promo_code": promo,
	})
}

// DeletePromoCode permanently removes a promo code
// DELETE /api/v1/admin/promo-codes/:id
func (ctrl *PromoController) DeletePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.promoService.Delete(id); err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo code deleted successfully"})
}

func (ctrl *PromoController) respondWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromoCodeNotFound):
		apperrors.NotFound(c, apperrors.PromoNotFound, "Promo code not found")
	case errors.Is(err, service.ErrPromoCodeExists):
		apperrors.Conflict(c, apperrors.PromoAlreadyExists, "A promo code with this code already exists")
	case errors.Is(err, service.ErrInvalidPromoCode):
		apperrors.BadRequest(c, apperrors.PromoValidationError, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Promo code operation failed", err)
		apperrors.InternalError(c, "")
	}
}
