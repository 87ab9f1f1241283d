package metadata

import "strings"

// IsValidISBN reports whether value is a valid ISBN-10 or ISBN-13. Spaces
// and hyphens are ignored; the check digit is verified.
func IsValidISBN(value string) bool {
	s := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, value)

	switch len(s) {
	case 10:
		return validISBN10(s)
	case 13:
		return validISBN13(s)
	}
	return false
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		if !isDigit(s[i]) {
			return false
		}
		sum += (i + 1) * int(s[i]-'0')
	}
	switch {
	case s[9] == 'X':
		sum += 10 * 10
	case isDigit(s[9]):
		sum += 10 * int(s[9]-'0')
	default:
		return false
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		if !isDigit(s[i]) {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += weight * int(s[i]-'0')
	}
	if !isDigit(s[12]) {
		return false
	}
	check := (10 - sum%10) % 10
	return int(s[12]-'0') == check
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
