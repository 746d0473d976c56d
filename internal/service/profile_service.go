package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/user-center/internal/repository"
	"github.com/user-center/internal/validation"
)

// NicknameRequest carries a nickname to check or set. Username is optional
// on update and must match the token's account when present.
type NicknameRequest struct {
	Nickname string `json:"nickname" binding:"required,min=1,max=20"`
	Username string `json:"username" binding:"omitempty,max=50"`
}

// ProfileService handles profile operations
type ProfileService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// NicknameAvailable reports whether no profile holds the sanitised nickname
func (s *ProfileService) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	nickname = validation.SanitizeText(nickname)
	if nickname == "" {
		return false, ErrEmptyNickname
	}
	exists, err := s.profileRepo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return false, fmt.Errorf("check nickname: %w", err)
	}
	return !exists, nil
}

// UpdateNickname changes the nickname of the authenticated account.
// claimed is the username sent in the body, if any.
func (s *ProfileService) UpdateNickname(ctx context.Context, userID uint, tokenUsername, claimed, nickname string) error {
	nickname = validation.SanitizeText(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}
	if claimed != "" && claimed != tokenUsername {
		return ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !user.Enabled() {
		return ErrAccountDisabled
	}
	if p := user.Profile; p != nil && p.Nickname != nil && *p.Nickname == nickname {
		return nil
	}

	exists, err := s.profileRepo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return fmt.Errorf("check nickname: %w", err)
	}
	if exists {
		return ErrNicknameTaken
	}

	if err := s.profileRepo.UpdateNickname(ctx, userID, nickname); err != nil {
		if conflict := conflictFor(err); conflict != nil {
			return conflict
		}
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update nickname: %w", err)
	}
	return nil
}
