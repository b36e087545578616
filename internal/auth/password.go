package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt truncates passwords at 72 bytes.
	bcryptMaxPasswordBytes = 72
	minPasswordChars       = 8
)

// ErrPasswordValidation marks passwords rejected before hashing; the message is safe to show users.
var ErrPasswordValidation = errors.New("invalid password")

type passwordError struct{ msg string }

func (e *passwordError) Error() string        { return e.msg }
func (e *passwordError) Is(target error) bool { return target == ErrPasswordValidation }

func IsPasswordValidationError(err error) bool {
	return errors.Is(err, ErrPasswordValidation)
}

// HashPassword hashes a plaintext password using bcrypt.
//
// Passwords must have at least minPasswordChars characters and at most
// bcryptMaxPasswordBytes bytes of UTF-8.
func HashPassword(plain string) (string, error) {
	return hashPasswordCost(plain, bcrypt.DefaultCost)
}

func hashPasswordCost(plain string, cost int) (string, error) {
	if plain == "" {
		return "", &passwordError{"password required"}
	}
	if utf8.RuneCountInString(plain) < minPasswordChars {
		return "", &passwordError{fmt.Sprintf("password must be at least %d characters", minPasswordChars)}
	}
	if len(plain) > bcryptMaxPasswordBytes {
		return "", &passwordError{fmt.Sprintf("password too long: at most %d bytes", bcryptMaxPasswordBytes)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePasswordHash(hash string, plain string) error {
	if plain == "" {
		return &passwordError{"password required"}
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
