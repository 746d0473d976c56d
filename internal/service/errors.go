package service

import "errors"

// ErrorKind classifies service failures for the transport layer
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindLocked         ErrorKind = "locked"
	KindInternal       ErrorKind = "internal"
)

// Error is a classified service failure. Field is set when the failure
// concerns one input field.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// validation
	ErrPasswordMismatch   = &Error{Kind: KindValidation, Field: "confirmPassword", Message: "passwords do not match"}
	ErrWeakPassword       = &Error{Kind: KindValidation, Field: "password", Message: "password does not meet the password policy"}
	ErrWeakNewPassword    = &Error{Kind: KindValidation, Field: "newPassword", Message: "password is too weak"}
	ErrPasswordTooLong    = &Error{Kind: KindValidation, Field: "password", Message: "password must be at most 72 bytes"}
	ErrNewPasswordTooLong = &Error{Kind: KindValidation, Field: "newPassword", Message: "password must be at most 72 bytes"}
	ErrAnswerLength       = &Error{Kind: KindValidation, Field: "securityAnswer", Message: "security answer must be 4-20 characters"}
	ErrAnswerTooLong      = &Error{Kind: KindValidation, Field: "securityAnswer", Message: "security answer must be at most 72 bytes"}
	ErrEmptyNickname      = &Error{Kind: KindValidation, Field: "nickname", Message: "nickname must not be empty"}
	ErrEmptyQuestion      = &Error{Kind: KindValidation, Field: "securityQuestion", Message: "security question must not be empty"}
	ErrCaptchaInvalid     = &Error{Kind: KindValidation, Field: "captcha", Message: "captcha is incorrect or expired"}

	// conflict
	ErrUsernameTaken = &Error{Kind: KindConflict, Field: "username", Message: "username already taken"}
	ErrEmailTaken    = &Error{Kind: KindConflict, Field: "email", Message: "email already taken"}
	ErrPhoneTaken    = &Error{Kind: KindConflict, Field: "phone", Message: "phone already taken"}
	ErrNicknameTaken = &Error{Kind: KindConflict, Field: "nickname", Message: "nickname already taken"}

	// authentication
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "invalid username or password"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Message: "invalid or expired token"}
	ErrAnswerIncorrect    = &Error{Kind: KindAuthentication, Message: "password recovery failed: the username, question or answer is not correct"}

	// authorization
	ErrAccountDisabled = &Error{Kind: KindAuthorization, Message: "account is disabled"}
	ErrForbidden       = &Error{Kind: KindAuthorization, Message: "not allowed to act on this account"}

	// not found
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "user not found"}

	// recovery flow
	ErrRecoveryNotStarted = &Error{Kind: KindValidation, Message: "password recovery session expired, please start again"}
	ErrRecoveryTerminated = &Error{Kind: KindLocked, Message: "too many incorrect answers, please start again from the login page"}
)

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
