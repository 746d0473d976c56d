package models

import (
	"time"
)

// AccountStatus is the enabled/disabled flag of an account
type AccountStatus int8

const (
	StatusDisabled AccountStatus = 0
	StatusEnabled  AccountStatus = 1
)

// User is the credential record of an account
type User struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	Username           string        `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash       string        `gorm:"size:255;not null" json:"-"`
	Email              string        `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone              *string       `gorm:"uniqueIndex;size:20" json:"phone,omitempty"`
	SecurityQuestion   string        `gorm:"size:255;not null" json:"securityQuestion"`
	SecurityAnswerHash string        `gorm:"size:255;not null" json:"-"`
	Status             AccountStatus `gorm:"not null" json:"status"`
	CreatedAt          time.Time     `json:"createdAt"`
	LastLoginAt        *time.Time    `json:"lastLoginAt"`

	// Relations
	Profile *UserProfile `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Enabled reports whether the account may log in
func (u *User) Enabled() bool {
	return u.Status == StatusEnabled
}

// Info builds the client-facing view of the account and its profile
func (u *User) Info() *UserInfo {
	info := &UserInfo{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Phone:            u.Phone,
		SecurityQuestion: u.SecurityQuestion,
		Status:           u.Status,
		CreatedAt:        u.CreatedAt,
		LastLoginAt:      u.LastLoginAt,
	}
	if p := u.Profile; p != nil {
		info.Nickname = p.Nickname
		info.Avatar = p.Avatar
		info.Gender = p.Gender
		info.Birthday = p.Birthday
		info.Address = p.Address
	}
	return info
}

// UserInfo is the joined account+profile view without any secret digests
type UserInfo struct {
	ID               uint          `json:"id"`
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	Phone            *string       `json:"phone"`
	SecurityQuestion string        `json:"securityQuestion"`
	Status           AccountStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	LastLoginAt      *time.Time    `json:"lastLoginAt"`
	Nickname         *string       `json:"nickname"`
	Avatar           *string       `json:"avatar"`
	Gender           *int8         `json:"gender"`
	Birthday         *time.Time    `json:"birthday"`
	Address          *string       `json:"address"`
}
