package repository

import (
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"gorm.io/gorm"
)

type InquiryRepository interface {
	Create(inquiry *model.TeamwearInquiry) error
	// FindAll returns inquiries newest first; an empty status matches all.
	FindAll(status model.InquiryStatus) ([]model.TeamwearInquiry, error)
	FindByID(id uint) (*model.TeamwearInquiry, error)
	Update(inquiry *model.TeamwearInquiry) error
}

type inquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(inquiry *model.TeamwearInquiry) error {
	logger.Debug("Creating teamwear inquiry in database", logger.Fields{
		"email": inquiry.Email,
	})

	if err := r.db.Create(inquiry).Error; err != nil {
		logger.Error("Failed to create teamwear inquiry in database", err, logger.Fields{
			"email": inquiry.Email,
		})
		return err
	}
	return nil
}

func (r *inquiryRepository) FindAll(status model.InquiryStatus) ([]model.TeamwearInquiry, error) {
	query := r.db.Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var inquiries []model.TeamwearInquiry
	if err := query.Find(&inquiries).Error; err != nil {
		logger.Error("Failed to list teamwear inquiries from database", err)
		return nil, err
	}

	logger.Debug("Teamwear inquiries listed from database", logger.Fields{
		"count":  len(inquiries),
		"status": status,
	})
	return inquiries, nil
}

func (r *inquiryRepository) FindByID(id uint) (*model.TeamwearInquiry, error) {
	var inquiry model.TeamwearInquiry
	if err := r.db.First(&inquiry, id).Error; err != nil {
		logger.Debug("Teamwear inquiry lookup failed", logger.Fields{
			"inquiry_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &inquiry, nil
}

func (r *inquiryRepository) Update(inquiry *model.TeamwearInquiry) error {
	if err := r.db.Save(inquiry).Error; err != nil {
		logger.Error("Failed to update teamwear inquiry in database", err, logger.Fields{
			"inquiry_id": inquiry.ID,
		})
		return err
	}
	return nil
}
