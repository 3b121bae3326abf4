package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/cache"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/money"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryKeyExists = errors.New("category key already exists")
	ErrInvalidCategory   = errors.New("invalid category")
)

const (
	catalogCachePrefix   = "catalog:"
	categoriesCacheKey   = catalogCachePrefix + "categories"
	DefaultCatalogTTL    = 5 * time.Minute
	maxCategoryKeyLength = 100
)

var categoryKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func categoryCacheKey(key string) string {
	return catalogCachePrefix + "category:" + key
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("%sproduct:%d", catalogCachePrefix, id)
}

// ProductInput describes one product of a category write.
type ProductInput struct {
	Title       string
	Description string
	Price       string
	Currency    string
	Status      model.ProductStatus
	Inventory   int
	ImageURL    string
	Featured    bool
}

// CategoryInput is the full payload of a category write. Products replace
// the existing list wholesale.
type CategoryInput struct {
	Key         string
	Title       string
	Description string
	HeroImage   string
	Status      model.CategoryStatus
	Products    []ProductInput
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByKey(ctx context.Context, key string) (*model.Category, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	cache        cache.Store
	ttl          time.Duration
}

func NewCatalogService(categoryRepo repository.CategoryRepository, store cache.Store, ttl time.Duration) CatalogService {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &catalogService{
		categoryRepo: categoryRepo,
		cache:        store,
		ttl:          ttl,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := cache.GetOrLoad(ctx, s.cache, categoriesCacheKey, s.ttl, func() ([]model.Category, error) {
		logger.Debug("Loading categories from repository")
		return s.categoryRepo.FindAll()
	})
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (s *catalogService) GetCategoryByKey(ctx context.Context, key string) (*model.Category, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrCategoryNotFound
	}

	category, err := cache.GetOrLoad(ctx, s.cache, categoryCacheKey(key), s.ttl, func() (*model.Category, error) {
		return s.categoryRepo.FindByKey(key)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, logger.Fields{
			"key": key,
		})
		return nil, err
	}
	return category, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := cache.GetOrLoad(ctx, s.cache, productCacheKey(id), s.ttl, func() (*model.Product, error) {
		return s.categoryRepo.FindProductByID(id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, logger.Fields{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	logger.Info("Creating category", logger.Fields{
		"key":           input.Key,
		"product_count": len(input.Products),
	})

	category := &model.Category{}
	if err := applyCategoryInput(category, input); err != nil {
		logger.Warn("Category rejected", logger.Fields{
			"key":   input.Key,
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.ensureKeyAvailable(category.Key, 0); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryKeyExists
		}
		logger.Error("Failed to create category", err, logger.Fields{
			"key": category.Key,
		})
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info("Category created", logger.Fields{
		"category_id": category.ID,
		"key":         category.Key,
	})
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*model.Category, error) {
	logger.Info("Updating category", logger.Fields{
		"category_id":   id,
		"product_count": len(input.Products),
	})

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if err := applyCategoryInput(category, input); err != nil {
		return nil, err
	}
	if err := s.ensureKeyAvailable(category.Key, id); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Replace(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryKeyExists
		}
		logger.Error("Failed to update category", err, logger.Fields{
			"category_id": id,
		})
		return nil, err
	}

	s.invalidate(ctx)
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		logger.Error("Failed to delete category", err, logger.Fields{
			"category_id": id,
		})
		return err
	}

	s.invalidate(ctx)
	logger.Info("Category deleted", logger.Fields{
		"category_id": id,
	})
	return nil
}

func (s *catalogService) ensureKeyAvailable(key string, selfID uint) error {
	existing, err := s.categoryRepo.FindByKey(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		logger.Warn("Category key already exists", logger.Fields{
			"key": key,
		})
		return ErrCategoryKeyExists
	}
	return nil
}

// invalidate drops every catalog entry. A failure only delays freshness
// until the TTL runs out.
func (s *catalogService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, catalogCachePrefix); err != nil {
		logger.Warn("Failed to invalidate catalog cache", logger.Fields{
			"error": err.Error(),
		})
	}
}

func applyCategoryInput(category *model.Category, input CategoryInput) error {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, reason)
	}

	key := strings.TrimSpace(input.Key)
	title := strings.TrimSpace(input.Title)
	switch {
	case key == "":
		return invalid("key is required")
	case len(key) > maxCategoryKeyLength || !categoryKeyPattern.MatchString(key):
		return invalid("key may only contain letters, digits, dashes and underscores")
	case title == "":
		return invalid("title is required")
	}

	status := input.Status
	if status == "" {
		status = model.CategoryStatusActive
	}
	if !status.IsValid() {
		return invalid("status must be active or coming-soon")
	}

	products := make([]model.Product, 0, len(input.Products))
	for i, p := range input.Products {
		productTitle := strings.TrimSpace(p.Title)
		if productTitle == "" {
			return invalid(fmt.Sprintf("product %d: title is required", i+1))
		}
		productStatus := p.Status
		if productStatus == "" {
			productStatus = model.ProductStatusActive
		}
		if !productStatus.IsValid() {
			return invalid(fmt.Sprintf("product %d: unknown status %q", i+1, p.Status))
		}
		price := money.Parse(p.Price)
		if price.IsNegative() {
			return invalid(fmt.Sprintf("product %d: price must not be negative", i+1))
		}
		currency := strings.ToUpper(strings.TrimSpace(p.Currency))
		if currency == "" {
			currency = "USD"
		}
		inventory := p.Inventory
		if inventory < 0 {
			inventory = 0
		}
		products = append(products, model.Product{
			Title:       productTitle,
			Description: strings.TrimSpace(p.Description),
			Price:       money.Round(price),
			Currency:    currency,
			Status:      productStatus,
			Inventory:   inventory,
			ImageURL:    strings.TrimSpace(p.ImageURL),
			Featured:    p.Featured,
		})
	}

	category.Key = key
	category.Title = title
	category.Description = strings.TrimSpace(input.Description)
	category.HeroImage = strings.TrimSpace(input.HeroImage)
	category.Status = status
	category.Products = products
	return nil
}
