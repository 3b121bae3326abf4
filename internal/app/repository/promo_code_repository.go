package repository

import (
	"context"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"gorm.io/gorm"
)

type PromoCodeRepository interface {
	// FindByCode looks up an already normalized code.
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindAll() ([]model.PromoCode, error)
	FindByID(id uint) (*model.PromoCode, error)
	Create(promo *model.PromoCode) error
	Update(promo *model.PromoCode) error
	Delete(id uint) error
	// DeactivateExpired clears is_active on active codes whose end date is before now.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type promoCodeRepository struct {
	db *gorm.DB
}

func NewPromoCodeRepository(db *gorm.DB) PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

func (r *promoCodeRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	logger.Debug("Finding promo code in database", logger.Fields{
		"code": code,
	})

	var promo model.PromoCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error; err != nil {
		logger.Debug("Promo code lookup failed", logger.Fields{
			"code":  code,
			"error": err.Error(),
		})
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) FindAll() ([]model.PromoCode, error) {
	logger.Debug("Listing promo codes from database")

	var promos []model.PromoCode
	if err := r.db.Order("created_at DESC, id DESC").Find(&promos).Error; err != nil {
		logger.Error("Failed to list promo codes from database", err)
		return nil, err
	}

	logger.Debug("Promo codes listed from database", logger.Fields{
		"count": len(promos),
	})
	return promos, nil
}

func (r *promoCodeRepository) FindByID(id uint) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		logger.Debug("Promo code lookup by ID failed", logger.Fields{
			"promo_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) Create(promo *model.PromoCode) error {
	logger.Debug("Creating promo code in database", logger.Fields{
		"code": promo.Code,
	})

	if err := r.db.Create(promo).Error; err != nil {
		logger.Error("Failed to create promo code in database", err, logger.Fields{
			"code": promo.Code,
		})
		return err
	}

	logger.Debug("Promo code created in database", logger.Fields{
		"promo_id": promo.ID,
		"code":     promo.Code,
	})
	return nil
}

func (r *promoCodeRepository) Update(promo *model.PromoCode) error {
	logger.Debug("Updating promo code in database", logger.Fields{
		"promo_id": promo.ID,
		"code":     promo.Code,
	})

	if err := r.db.Save(promo).Error; err != nil {
		logger.Error("Failed to update promo code in database", err, logger.Fields{
			"promo_id": promo.ID,
		})
		return err
	}
	return nil
}

func (r *promoCodeRepository) Delete(id uint) error {
	logger.Debug("Deleting promo code from database", logger.Fields{
		"promo_id": id,
	})

	result := r.db.Delete(&model.PromoCode{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete promo code from database", result.Error, logger.Fields{
			"promo_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promoCodeRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PromoCode{}).
		Where("is_active = ? AND end_date < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate expired promo codes", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired promo codes deactivated", logger.Fields{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
