package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLength = 2
	UsernameMaxLength = 20
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameLength   = fmt.Errorf("username must be %d-%d characters", UsernameMinLength, UsernameMaxLength)
)

// User - a logged-in player. There are no passwords; a login session is the only credential.
type User struct {
	ID        string    `json:"user_id"`
	Username  string    `json:"username"`
	LoginTime time.Time `json:"login_time"`
	IsActive  bool      `json:"is_active"`
}

func NewUser(id, username string, loginTime time.Time) *User {
	return &User{
		ID:        id,
		Username:  username,
		LoginTime: loginTime,
		IsActive:  true,
	}
}

// ParseUsername - trims surrounding whitespace and checks the length in characters.
func ParseUsername(value string) (string, error) {
	username := strings.TrimSpace(value)
	if username == "" {
		return "", ErrUsernameRequired
	}

	if n := utf8.RuneCountInString(username); n < UsernameMinLength || n > UsernameMaxLength {
		return "", ErrUsernameLength
	}

	return username, nil
}
