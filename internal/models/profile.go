package models

import "time"

// UserProfile is the display identity attached one-to-one to a User
type UserProfile struct {
	UserID    uint       `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Nickname  *string    `gorm:"uniqueIndex;size:50" json:"nickname"`
	Avatar    *string    `gorm:"size:255" json:"avatar"`
	Gender    *int8      `json:"gender"`
	Birthday  *time.Time `gorm:"type:date" json:"birthday"`
	Address   *string    `gorm:"size:255" json:"address"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}
