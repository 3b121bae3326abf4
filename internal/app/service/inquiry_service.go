package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/websocket"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInquiryNotFound      = errors.New("inquiry not found")
	ErrInvalidInquiry       = errors.New("invalid inquiry")
	ErrInvalidInquiryStatus = errors.New("invalid inquiry status")
)

type CreateInquiryInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	Description string
	DesignFile  string
	FileName    string
}

type InquiryService interface {
	Create(input CreateInquiryInput) (*model.TeamwearInquiry, error)
	List(status model.InquiryStatus) ([]model.TeamwearInquiry, error)
	Update(id uint, status model.InquiryStatus, notes *string) (*model.TeamwearInquiry, error)
}

type inquiryService struct {
	inquiryRepo repository.InquiryRepository
	mailer      util.Mailer
	events      EventPublisher
}

func NewInquiryService(inquiryRepo repository.InquiryRepository, mailer util.Mailer, events EventPublisher) InquiryService {
	return &inquiryService{
		inquiryRepo: inquiryRepo,
		mailer:      mailer,
		events:      publisherOrNoop(events),
	}
}

func (s *inquiryService) Create(input CreateInquiryInput) (*model.TeamwearInquiry, error) {
	inquiry := &model.TeamwearInquiry{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Email:       util.NormalizeEmail(input.Email),
		Description: strings.TrimSpace(input.Description),
		DesignFile:  strings.TrimSpace(input.DesignFile),
		FileName:    strings.TrimSpace(input.FileName),
		Status:      model.InquiryStatusPending,
	}

	if err := validateInquiry(inquiry); err != nil {
		logger.Warn("Teamwear inquiry rejected", logger.Fields{
			"email": inquiry.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.inquiryRepo.Create(inquiry); err != nil {
		logger.Error("Failed to create teamwear inquiry", err, logger.Fields{
			"email": inquiry.Email,
		})
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendInquiryConfirmation(inquiry.Email, inquiry.FirstName); err != nil {
			logger.Warn("Failed to send inquiry confirmation", logger.Fields{
				"inquiry_id": inquiry.ID,
				"error":      err.Error(),
			})
		}
	}
	s.events.Publish(websocket.EventInquiryCreated, inquiry)

	logger.Info("Teamwear inquiry created", logger.Fields{
		"inquiry_id": inquiry.ID,
		"email":      inquiry.Email,
	})
	return inquiry, nil
}

func validateInquiry(inquiry *model.TeamwearInquiry) error {
	var missing []string
	if inquiry.FirstName == "" {
		missing = append(missing, "first name")
	}
	if inquiry.LastName == "" {
		missing = append(missing, "last name")
	}
	if inquiry.PhoneNumber == "" {
		missing = append(missing, "phone number")
	}
	if inquiry.Email == "" {
		missing = append(missing, "email")
	}
	if inquiry.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInquiry, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(inquiry.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInquiry)
	}
	return nil
}

func (s *inquiryService) List(status model.InquiryStatus) ([]model.TeamwearInquiry, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidInquiryStatus
	}
	inquiries, err := s.inquiryRepo.FindAll(status)
	if err != nil {
		logger.Error("Failed to list teamwear inquiries", err)
		return nil, err
	}
	return inquiries, nil
}

// Update changes the status and, when notes is non-nil, the admin notes.
// An empty status keeps the current one.
func (s *inquiryService) Update(id uint, status model.InquiryStatus, notes *string) (*model.TeamwearInquiry, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidInquiryStatus
	}

	inquiry, err := s.inquiryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}

	if status != "" {
		inquiry.Status = status
	}
	if notes != nil {
		inquiry.Notes = strings.TrimSpace(*notes)
	}

	if err := s.inquiryRepo.Update(inquiry); err != nil {
		logger.Error("Failed to update teamwear inquiry", err, logger.Fields{
			"inquiry_id": id,
		})
		return nil, err
	}

	logger.Info("Teamwear inquiry updated", logger.Fields{
		"inquiry_id": id,
		"status":     inquiry.Status,
	})
	return inquiry, nil
}
