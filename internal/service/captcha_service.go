package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user-center/internal/cache"
	"github.com/user-center/pkg/keygen"
)

const (
	captchaLength    = 4
	captchaKeyPrefix = "captcha:"
)

// CaptchaService issues single-use captcha codes kept server-side
type CaptchaService struct {
	store   cache.Store
	ttl     time.Duration
	enabled bool
}

// NewCaptchaService creates a new CaptchaService
func NewCaptchaService(store cache.Store, ttl time.Duration, enabled bool) *CaptchaService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CaptchaService{
		store:   store,
		ttl:     ttl,
		enabled: enabled,
	}
}

// Enabled reports whether forms must carry a captcha
func (s *CaptchaService) Enabled() bool {
	return s.enabled
}

// Issue creates a new code and returns the ticket id it is stored under
func (s *CaptchaService) Issue(ctx context.Context) (id, code string, err error) {
	code, err = keygen.CaptchaCode(captchaLength)
	if err != nil {
		return "", "", fmt.Errorf("generate captcha: %w", err)
	}
	id = keygen.TicketID()
	if err := s.store.Set(ctx, captchaKeyPrefix+id, code, s.ttl); err != nil {
		return "", "", err
	}
	return id, code, nil
}

// Verify consumes the code under id and compares it with input, ignoring case.
// It is a no-op when captchas are disabled.
func (s *CaptchaService) Verify(ctx context.Context, id, input string) error {
	if !s.enabled {
		return nil
	}
	if id == "" || strings.TrimSpace(input) == "" {
		return ErrCaptchaInvalid
	}

	var code string
	ok, err := s.store.Get(ctx, captchaKeyPrefix+id, &code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCaptchaInvalid
	}
	if err := s.store.Delete(ctx, captchaKeyPrefix+id); err != nil {
		return err
	}
	if !strings.EqualFold(code, strings.TrimSpace(input)) {
		return ErrCaptchaInvalid
	}
	return nil
}
