package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
)

type InquiryController struct {
	inquiryService service.InquiryService
}

func NewInquiryController(inquiryService service.InquiryService) *InquiryController {
	return &InquiryController{
		inquiryService: inquiryService,
	}
}

type CreateInquiryRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Description string `json:"description" binding:"required"`
	DesignFile  string `json:"design_file"`
	FileName    string `json:"file_name"`
}

type UpdateInquiryRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// CreateInquiry records a custom teamwear request
// POST /api/v1/teamwear-inquiries
func (ctrl *InquiryController) CreateInquiry(c *gin.Context) {
	var req CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please fill in your name, phone number, email and a description")
		return
	}

	inquiry, err := ctrl.inquiryService.Create(service.CreateInquiryInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: req.Description,
		DesignFile:  req.DesignFile,
		FileName:    req.FileName,
	})
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thanks! We'll be in touch about your teamwear order.",
		"inquiry": inquiry,
	})
}

// ListInquiries returns inquiries, optionally filtered by ?status=
// GET /api/v1/admin/teamwear-inquiries
func (ctrl *InquiryController) ListInquiries(c *gin.Context) {
	status := model.InquiryStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		apperrors.BadRequest(c, apperrors.InquiryInvalidStatus, "Unknown inquiry status")
		return
	}

	inquiries, err := ctrl.inquiryService.List(status)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"count":     len(inquiries),
	})
}

// UpdateInquiry changes status and admin notes
// PUT /api/v1/admin/teamwear-inquiries/:id
func (ctrl *InquiryController) UpdateInquiry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	inquiry, err := ctrl.inquiryService.Update(id, model.InquiryStatus(req.Status), req.Notes)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inquiry updated successfully",
		"inquiry": inquiry,
	})
}

func (ctrl *InquiryController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInquiryNotFound):
		apperrors.NotFound(c, apperrors.InquiryNotFound, "Inquiry not found")
	case errors.Is(err, service.ErrInvalidInquiryStatus):
		apperrors.BadRequest(c, apperrors.InquiryInvalidStatus, "Unknown inquiry status")
	case errors.Is(err, service.ErrInvalidInquiry):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Inquiry request failed", err)
		apperrors.InternalError(c, "")
	}
}
