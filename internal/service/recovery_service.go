package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user-center/internal/cache"
	"github.com/user-center/internal/config"
	"github.com/user-center/internal/metrics"
	"github.com/user-center/internal/repository"
	"github.com/user-center/internal/validation"
	"github.com/user-center/pkg/crypto"
	"github.com/user-center/pkg/keygen"
)

const recoveryKeyPrefix = "recovery:"

// RecoveryStage is the step a recovery ticket has reached
type RecoveryStage string

const (
	StageAwaitingAnswer      RecoveryStage = "awaiting_answer"
	StageAwaitingNewPassword RecoveryStage = "awaiting_new_password"
)

// recoveryTicket is the server-side state of one password recovery
type recoveryTicket struct {
	Username string        `json:"username"`
	Stage    RecoveryStage `json:"stage"`
}

// ForgotUsernameRequest starts a recovery or asks for the question
type ForgotUsernameRequest struct {
	Username string `json:"username" binding:"required,max=50"`
}

// VerifyAnswerRequest carries the security answer
type VerifyAnswerRequest struct {
	Username       string `json:"username" binding:"required,max=50"`
	SecurityAnswer string `json:"securityAnswer" binding:"required,max=20,secret_bytes"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Username    string `json:"username" binding:"required,max=50"`
	NewPassword string `json:"newPassword" binding:"required,max=64,password_strength,secret_bytes"`
}

// RecoveryService drives the forgot-password flow. Each ticket id lives in
// the caller's session; the ticket itself stays in the store.
type RecoveryService struct {
	userRepo    *repository.UserRepository
	hasher      *crypto.Hasher
	store       cache.Store
	ttl         time.Duration
	maxAttempts int
	decoyQ      string
	decoy       *decoyDigest
	verify      func(secret, digest string) (bool, error)
}

// NewRecoveryService creates a new RecoveryService
func NewRecoveryService(
	userRepo *repository.UserRepository,
	hasher *crypto.Hasher,
	store cache.Store,
	cfg config.SecurityConfig,
) *RecoveryService {
	ttl := cfg.RecoveryTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	maxAttempts := cfg.MaxAnswerAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &RecoveryService{
		userRepo:    userRepo,
		hasher:      hasher,
		store:       store,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		decoyQ:      cfg.DecoyQuestion,
		decoy:       newDecoyDigest(hasher),
		verify:      hasher.Verify,
	}
}

func ticketKey(id string) string  { return recoveryKeyPrefix + id }
func attemptKey(id string) string { return recoveryKeyPrefix + id + ":attempts" }

// Start discards previousID, if any, and opens a new ticket for username.
// It never reveals whether the account exists.
func (s *RecoveryService) Start(ctx context.Context, previousID, username string) (string, error) {
	if previousID != "" {
		if err := s.discard(ctx, previousID); err != nil {
			return "", err
		}
	}

	id := keygen.TicketID()
	ticket := recoveryTicket{
		Username: strings.TrimSpace(username),
		Stage:    StageAwaitingAnswer,
	}
	if err := s.store.Set(ctx, ticketKey(id), ticket, s.ttl); err != nil {
		return "", fmt.Errorf("save recovery ticket: %w", err)
	}
	return id, nil
}

// SecurityQuestion returns the question for the ticket's account, or the
// decoy question when the account is unknown.
func (s *RecoveryService) SecurityQuestion(ctx context.Context, id, username string) (string, error) {
	ticket, err := s.load(ctx, id, username)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByUsername(ctx, ticket.Username)
	if err != nil {
		return s.decoyQ, nil
	}
	return user.SecurityQuestion, nil
}

// VerifyAnswer checks the security answer. On a wrong answer it returns
// ErrAnswerIncorrect with the attempts left, or ErrRecoveryTerminated once
// the limit is reached and the ticket is gone.
func (s *RecoveryService) VerifyAnswer(ctx context.Context, id, username, answer string) (int, error) {
	remaining, err := s.verifyAnswer(ctx, id, username, answer)
	switch {
	case err == nil:
		metrics.RecoveryAnswersTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	case errors.Is(err, ErrAnswerIncorrect):
		metrics.RecoveryAnswersTotal.WithLabelValues(metrics.ResultFailure).Inc()
	case errors.Is(err, ErrRecoveryTerminated):
		metrics.RecoveryAnswersTotal.WithLabelValues(metrics.ResultFailure).Inc()
		metrics.RecoveryTerminatedTotal.Inc()
	}
	return remaining, err
}

func (s *RecoveryService) verifyAnswer(ctx context.Context, id, username, answer string) (int, error) {
	if _, err := s.load(ctx, id, username); err != nil {
		return 0, err
	}

	// Attempts are charged before comparing. Past maxAttempts nothing is compared.
	attempts, err := s.store.Incr(ctx, attemptKey(id), s.ttl)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	if attempts > int64(s.maxAttempts) {
		return 0, ErrRecoveryTerminated
	}

	// The ticket may have advanced or closed while the attempt was counted.
	ticket, err := s.load(ctx, id, username)
	if err != nil {
		return 0, err
	}
	if ticket.Stage != StageAwaitingAnswer {
		return 0, ErrRecoveryNotStarted
	}

	answer = strings.TrimSpace(answer)
	matched := false
	user, err := s.userRepo.GetByUsername(ctx, ticket.Username)
	switch {
	case err == nil:
		matched, err = s.verify(answer, user.SecurityAnswerHash)
		if err != nil {
			return 0, err
		}
	case errors.Is(err, repository.ErrUserNotFound):
		s.decoy.compare(answer)
	default:
		return 0, fmt.Errorf("load user: %w", err)
	}

	if matched {
		ticket.Stage = StageAwaitingNewPassword
		ok, err := s.store.Replace(ctx, ticketKey(id), ticket, s.ttl)
		if err != nil {
			return 0, fmt.Errorf("save recovery ticket: %w", err)
		}
		if !ok {
			return 0, ErrRecoveryNotStarted
		}
		if err := s.store.Delete(ctx, attemptKey(id)); err != nil {
			return 0, err
		}
		return s.maxAttempts, nil
	}

	if attempts == int64(s.maxAttempts) {
		if err := s.discard(ctx, id); err != nil {
			return 0, err
		}
		return 0, ErrRecoveryTerminated
	}
	return s.maxAttempts - int(attempts), ErrAnswerIncorrect
}

// ResetPassword replaces the password once the answer has been verified
// and closes the ticket.
func (s *RecoveryService) ResetPassword(ctx context.Context, id, username, newPassword string) error {
	ticket, err := s.load(ctx, id, username)
	if err != nil {
		return err
	}
	if ticket.Stage != StageAwaitingNewPassword {
		return ErrRecoveryNotStarted
	}
	newPassword = strings.TrimSpace(newPassword)
	if validation.StrengthScore(newPassword) < validation.MinResetStrength {
		return ErrWeakNewPassword
	}
	if !validation.FitsSecret(newPassword) {
		return ErrNewPasswordTooLong
	}

	user, err := s.userRepo.GetByUsername(ctx, ticket.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = s.discard(ctx, id)
			return ErrRecoveryNotStarted
		}
		return fmt.Errorf("load user: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.discard(ctx, id); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.Inc()
	return nil
}

// discard drops the ticket and its attempt counter
func (s *RecoveryService) discard(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, ticketKey(id)); err != nil {
		return fmt.Errorf("delete recovery ticket: %w", err)
	}
	if err := s.store.Delete(ctx, attemptKey(id)); err != nil {
		return fmt.Errorf("delete attempt counter: %w", err)
	}
	return nil
}

// load fetches a live ticket that belongs to username
func (s *RecoveryService) load(ctx context.Context, id, username string) (*recoveryTicket, error) {
	if id == "" {
		return nil, ErrRecoveryNotStarted
	}
	var ticket recoveryTicket
	ok, err := s.store.Get(ctx, ticketKey(id), &ticket)
	if err != nil {
		return nil, fmt.Errorf("load recovery ticket: %w", err)
	}
	if !ok || ticket.Username != strings.TrimSpace(username) {
		return nil, ErrRecoveryNotStarted
	}
	return &ticket, nil
}
