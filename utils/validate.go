package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	phoneRegexp   = regexp.MustCompile(`^(\+?254|0)[17]\d{8}$`)
	digitsRegexp  = regexp.MustCompile(`^\d+$`)
	decimalRegexp = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// IsValidPhoneNumber reports whether the string is a Kenyan mobile
// money number, ignoring whitespace.
func IsValidPhoneNumber(phone string) bool {
	cleaned := strings.ReplaceAll(phone, " ", "")
	return phoneRegexp.MatchString(cleaned)
}

// IsValidAccountNumber accepts purely numeric account numbers of at
// least 6 digits.
func IsValidAccountNumber(account string) bool {
	return len(account) >= 6 && digitsRegexp.MatchString(account)
}

// IsValidCardNumber accepts 16-digit card numbers, ignoring whitespace.
func IsValidCardNumber(card string) bool {
	cleaned := strings.ReplaceAll(card, " ", "")
	return len(cleaned) == 16 && digitsRegexp.MatchString(cleaned)
}

// IsValidFiatAmount accepts positive decimal amounts with at most two
// fraction digits.
func IsValidFiatAmount(amount string) bool {
	if !decimalRegexp.MatchString(amount) {
		return false
	}
	value, err := strconv.ParseFloat(amount, 64)
	return err == nil && value > 0
}
