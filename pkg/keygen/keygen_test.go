package keygen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptchaCode(t *testing.T) {
	code, err := CaptchaCode(4)
	require.NoError(t, err)
	assert.Len(t, code, 4)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(CaptchaCharset, r), "unexpected rune %q", r)
	}
}

func TestTicketID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := TicketID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
