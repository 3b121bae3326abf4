package model

import (
	"time"
)

type UserRole string // account role, ordered by privilege

const (
	RoleCustomer UserRole = "customer" // storefront shopper
	RoleStaff    UserRole = "staff"    // handles inquiries and orders
	RoleManager  UserRole = "manager"  // manages catalog and promo codes
	RoleAdmin    UserRole = "admin"    // manages users
	RoleOwner    UserRole = "owner"
)

var roleRank = map[UserRole]int{
	RoleCustomer: 0,
	RoleStaff:    1,
	RoleManager:  2,
	RoleAdmin:    3,
	RoleOwner:    4,
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries the privileges of min.
func (r UserRole) AtLeast(min UserRole) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"` // stored lower-cased
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Picture      string     `json:"picture,omitempty"`
	Provider     string     `gorm:"type:varchar(20);default:'local'" json:"provider"`
	Role         UserRole   `gorm:"type:varchar(20);default:'customer'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LoginCount   int        `gorm:"default:0" json:"login_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user may use the back office.
func (u *User) IsStaff() bool {
	return u.Role.AtLeast(RoleStaff)
}
