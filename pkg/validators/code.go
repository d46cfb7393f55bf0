// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"strings"
)

var (
	ErrCodeEmpty   = errors.New("no code provided")
	ErrCodeTooLong = errors.New("code is too long")
	ErrCodeInvalid = errors.New("code may only contain latin letters and digits")
	ErrCodeDigits  = errors.New("code must be made of digits only")
	ErrCodeLength  = errors.New("code has the wrong length")
)

// MaxCodeLength matches the size of the media.code column
const MaxCodeLength = 32

type CodeRules struct {
	// When set the code must be exactly Length digits
	DigitsOnly bool
	Length     int
}

// NormalizeCode is applied to every code before it reaches the database
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CodeValidator checks a code that was already normalized
func CodeValidator(code string, rules CodeRules) error {
	if code == "" {
		return ErrCodeEmpty
	}

	if len(code) > MaxCodeLength {
		return ErrCodeTooLong
	}

	for _, r := range code {
		isDigit := r >= '0' && r <= '9'
		isLetter := r >= 'A' && r <= 'Z'

		if rules.DigitsOnly && !isDigit {
			return ErrCodeDigits
		}

		if !isDigit && !isLetter {
			return ErrCodeInvalid
		}
	}

	if rules.DigitsOnly && rules.Length > 0 && len(code) != rules.Length {
		return ErrCodeLength
	}

	return nil
}
