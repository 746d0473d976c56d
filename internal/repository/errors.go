package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// DuplicateError reports a UNIQUE constraint violation on a column
type DuplicateError struct {
	Column string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Column)
}

// uniqueColumns maps the table.column names SQLite reports to column names
var uniqueColumns = map[string]string{
	"users.username":         "username",
	"users.email":            "email",
	"users.phone":            "phone",
	"user_profiles.nickname": "nickname",
}

// translateError turns SQLite UNIQUE failures into *DuplicateError
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	for qualified, column := range uniqueColumns {
		if strings.Contains(msg, qualified) {
			return &DuplicateError{Column: column}
		}
	}
	return err
}
