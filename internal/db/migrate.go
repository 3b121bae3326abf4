package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.PromoCode{},
		&model.TeamwearInquiry{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs AutoMigrate and seeds the default categories.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedCategories(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}

// SeedCategories creates the storefront collections when the table is empty.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", logger.Fields{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{
			Key:         "professionalAthletes",
			Title:       "Professional Athletes",
			Description: "International jerseys straight from overseas pros.",
			Status:      model.CategoryStatusActive,
			Products: []model.Product{
				{
					Title:       "LeBron International Jersey",
					Description: "Limited run jersey straight from overseas play.",
					Price:       decimal.NewFromInt(140),
					Currency:    "USD",
					Status:      model.ProductStatusActive,
					Inventory:   25,
					Featured:    true,
					Position:    0,
				},
				{
					Title:       "Kawhi Tokyo Edition",
					Description: "Alternate jersey from the Tokyo showcase.",
					Price:       decimal.NewFromInt(135),
					Currency:    "USD",
					Status:      model.ProductStatusActive,
					Inventory:   18,
					Position:    1,
				},
			},
		},
		{
			Key:         "influencers",
			Title:       "Influencers",
			Description: "Drops with HoopDreams and the creators shaping the culture.",
			Status:      model.CategoryStatusComingSoon,
		},
		{
			Key:         "highSchoolAthletes",
			Title:       "High School Athletes",
			Description: "High school phenoms and their signature jerseys.",
			Status:      model.CategoryStatusComingSoon,
		},
		{
			Key:         "teamwear",
			Title:       "Teamwear",
			Description: "Custom team kits built with the JerseyLab studio.",
			Status:      model.CategoryStatusActive,
		},
	}

	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	logger.Info("Categories seeded successfully", logger.Fields{
		"total_records": len(categories),
	})
	return nil
}

// SeedDemoPromoCodes creates SAVE10 and FLAT50 when they do not exist yet.
func SeedDemoPromoCodes(db *gorm.DB, now time.Time) error {
	demo := []model.PromoCode{
		{
			Code:              "SAVE10",
			Description:       "10% off your order",
			DiscountType:      model.DiscountPercentage,
			DiscountValue:     decimal.NewFromInt(10),
			MinPurchaseAmount: decimal.Zero,
			StartDate:         now.AddDate(0, 0, -1),
			EndDate:           now.AddDate(1, 0, 0),
			IsActive:          true,
		},
		{
			Code:              "FLAT50",
			Description:       "$50 off orders of $100 or more",
			DiscountType:      model.DiscountFixed,
			DiscountValue:     decimal.NewFromInt(50),
			MinPurchaseAmount: decimal.NewFromInt(100),
			StartDate:         now.AddDate(0, 0, -1),
			EndDate:           now.AddDate(1, 0, 0),
			IsActive:          true,
		},
	}

	for i := range demo {
		var existing model.PromoCode
		err := db.Where("code = ?", demo[i].Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&demo[i]).Error; err != nil {
			return fmt.Errorf("seed promo code %s: %w", demo[i].Code, err)
		}
	}
	return nil
}
