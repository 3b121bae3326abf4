package model

import (
	"time"
)

type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusInProgress InquiryStatus = "in-progress"
	InquiryStatusCompleted  InquiryStatus = "completed"
	InquiryStatusCancelled  InquiryStatus = "cancelled"
)

func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusPending, InquiryStatusInProgress, InquiryStatusCompleted, InquiryStatusCancelled:
		return true
	}
	return false
}

// TeamwearInquiry is a custom team kit request from the storefront form.
type TeamwearInquiry struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	FirstName   string        `gorm:"not null" json:"first_name"`
	LastName    string        `gorm:"not null" json:"last_name"`
	PhoneNumber string        `gorm:"not null" json:"phone_number"`
	Email       string        `gorm:"not null;index" json:"email"`
	Description string        `gorm:"type:text;not null" json:"description"`
	DesignFile  string        `json:"design_file"` // uploaded file URL
	FileName    string        `json:"file_name"`
	Status      InquiryStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes       string        `gorm:"type:text" json:"notes"` // admin only
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (TeamwearInquiry) TableName() string {
	return "teamwear_inquiries"
}
