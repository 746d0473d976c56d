package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-center/pkg/keygen"
)

func TestCaptcha_IssueAndVerify(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	id, code, err := env.captcha.Issue(ctx)
	require.NoError(t, err)
	assert.Len(t, code, 4)
	for _, r := range code {
		assert.Contains(t, keygen.CaptchaCharset, string(r))
	}

	assert.NoError(t, env.captcha.Verify(ctx, id, strings.ToLower(code)))
	assert.ErrorIs(t, env.captcha.Verify(ctx, id, code), ErrCaptchaInvalid, "codes are single use")
}

func TestCaptcha_WrongCodeIsConsumed(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	id, code, err := env.captcha.Issue(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, env.captcha.Verify(ctx, id, code+"X"), ErrCaptchaInvalid)
	assert.ErrorIs(t, env.captcha.Verify(ctx, id, code), ErrCaptchaInvalid)
}

func TestCaptcha_NoBypass(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	for _, input := range []string{"", "8888", "0000"} {
		assert.ErrorIs(t, env.captcha.Verify(ctx, "", input), ErrCaptchaInvalid)
		assert.ErrorIs(t, env.captcha.Verify(ctx, "unknown", input), ErrCaptchaInvalid)
	}
}

func TestCaptcha_DisabledSkipsCheck(t *testing.T) {
	env := newTestEnv(t, false)
	assert.False(t, env.captcha.Enabled())
	assert.NoError(t, env.captcha.Verify(context.Background(), "", ""))
}
