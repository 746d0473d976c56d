package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/user-center/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ExistsByNickname checks whether any profile holds the nickname
func (r *ProfileRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("nickname = ?", nickname).
		Count(&count).Error
	return count > 0, err
}

// UpdateNickname sets the nickname of a user's profile
func (r *ProfileRepository) UpdateNickname(ctx context.Context, userID uint, nickname string) error {
	result := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"nickname":   nickname,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
