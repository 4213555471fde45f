package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOwner    UserRole = "owner"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleCustomer || r == RoleOwner || r == RoleAdmin
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type User struct {
	ID                 int64              `json:"id"`
	Email              string             `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash       string             `json:"-" gorm:"not null"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone,omitempty"`
	Role               UserRole           `json:"role" gorm:"size:16;not null"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"size:16;not null;default:pending"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}
