package service

import (
	"regexp"

	pkgerrors "duothan/pkg/errors"
)

// Team name: 3-32 chars, start with a letter or digit, allow letters,
// numbers, space, dot, underscore, hyphen.
var teamNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 _.-]{2,31}$`)

// Password: 8-128 chars, printable ASCII only.
var passwordPattern = regexp.MustCompile(`^[\x21-\x7E]{8,128}$`)

func validateTeamName(name string) error {
	if !teamNamePattern.MatchString(name) {
		return pkgerrors.New(pkgerrors.InvalidTeamName)
	}
	return nil
}

func validatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	if !hasLetterAndNumber(password) {
		return pkgerrors.New(pkgerrors.InvalidPassword).WithMessage("password must contain a letter and a number")
	}
	return nil
}

func validateLoginPassword(password string) error {
	if len(password) == 0 || len(password) > 128 {
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	return nil
}

func hasLetterAndNumber(password string) bool {
	hasLetter := false
	hasNumber := false
	for i := 0; i < len(password); i++ {
		b := password[i]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
			hasLetter = true
		} else if b >= '0' && b <= '9' {
			hasNumber = true
		}
		if hasLetter && hasNumber {
			return true
		}
	}
	return false
}
