package repository

import (
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindByKey(key string) (*model.Category, error)
	FindProductByID(id uint) (*model.Product, error)
	Create(category *model.Category) error
	// Replace saves the category fields and swaps its product list wholesale.
	Replace(category *model.Category) error
	Delete(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) withProducts() *gorm.DB {
	return r.db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	})
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	logger.Debug("Listing categories from database")

	var categories []model.Category
	if err := r.withProducts().Order("created_at ASC, id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories from database", err)
		return nil, err
	}

	logger.Debug("Categories listed from database", logger.Fields{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.withProducts().First(&category, id).Error; err != nil {
		logger.Debug("Category lookup by ID failed", logger.Fields{
			"category_id": id,
			"error":       err.Error(),
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByKey(key string) (*model.Category, error) {
	var category model.Category
	if err := r.withProducts().Where(&model.Category{Key: key}).First(&category).Error; err != nil {
		logger.Debug("Category lookup by key failed", logger.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindProductByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Debug("Product lookup by ID failed", logger.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", logger.Fields{
		"key":           category.Key,
		"product_count": len(category.Products),
	})

	numberProducts(category)
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, logger.Fields{
			"key": category.Key,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Replace(category *model.Category) error {
	logger.Debug("Replacing category in database", logger.Fields{
		"category_id":   category.ID,
		"product_count": len(category.Products),
	})

	products := category.Products
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Save(category).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		for i := range products {
			products[i].ID = 0
			products[i].CategoryID = category.ID
			products[i].Position = i
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to replace category in database", err, logger.Fields{
			"category_id": category.ID,
		})
		return err
	}

	category.Products = products
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category from database", logger.Fields{
		"category_id": id,
	})

	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Category{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		logger.Error("Failed to delete category from database", err, logger.Fields{
			"category_id": id,
		})
		return err
	}
	if affected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func numberProducts(category *model.Category) {
	for i := range category.Products {
		category.Products[i].Position = i
	}
}
