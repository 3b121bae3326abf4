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

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

type ProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Inventory   int    `json:"inventory"`
	ImageURL    string `json:"image_url"`
	Featured    bool   `json:"featured"`
}

type CategoryRequest struct {
	Key         string           `json:"key" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	HeroImage   string           `json:"hero_image"`
	Status      string           `json:"status"`
	Products    []ProductRequest `json:"products"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	input := service.CategoryInput{
		Key:         r.Key,
		Title:       r.Title,
		Description: r.Description,
		HeroImage:   r.HeroImage,
		Status:      model.CategoryStatus(r.Status),
		Products:    make([]service.ProductInput, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		input.Products = append(input.Products, service.ProductInput{
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Currency:    p.Currency,
			Status:      model.ProductStatus(p.Status),
			Inventory:   p.Inventory,
			ImageURL:    p.ImageURL,
			Featured:    p.Featured,
		})
	}
	return input
}

// ListCategories returns every category with its products
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategory returns one category by key
// GET /api/v1/categories/:key
func (ctrl *CatalogController) GetCategory(c *gin.Context) {
	category, err := ctrl.catalogService.GetCategoryByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// GetProduct returns one product
// GET /api/v1/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateCategory adds a category and its products
// POST /api/v1/admin/categories
func (ctrl *CatalogController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "key and title are required")
		return
	}

	category, err := ctrl.catalogService.CreateCategory(c.Request.Context(), req.toInput())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"key":         category.Key,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}

// UpdateCategory replaces a category and its product list
// PUT /api/v1/admin/categories/:id
func (ctrl *CatalogController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "key and title are required")
		return
	}

	category, err := ctrl.catalogService.UpdateCategory(c.Request.Context(), id, req.toInput())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes a category and its products
// DELETE /api/v1/admin/categories/:id
func (ctrl *CatalogController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (ctrl *CatalogController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CatalogCategoryNotFound, "Category not found")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
	case errors.Is(err, service.ErrCategoryKeyExists):
		apperrors.Conflict(c, apperrors.CatalogKeyExists, "A category with this key already exists")
	case errors.Is(err, service.ErrInvalidCategory):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Catalog request failed", err)
		apperrors.InternalError(c, "")
	}
}
