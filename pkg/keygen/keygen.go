package keygen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	// CaptchaCharset matches the characters the login and register pages can draw
	CaptchaCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TicketID returns an opaque identifier for a server-side ticket
func TicketID() string {
	return uuid.NewString()
}

// CaptchaCode generates a captcha code of the given length
func CaptchaCode(length int) (string, error) {
	return randomString(length, CaptchaCharset)
}

// randomString generates a random string of given length from the given charset
func randomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}

	return string(result), nil
}
