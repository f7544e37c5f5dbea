// Package luna checks payment card numbers with the Luhn checksum.
package luna

import "strings"

const (
	minCardDigits = 12
	maxCardDigits = 19
)

var separators = strings.NewReplacer(" ", "", "-", "")

// Validate reports whether number is all digits and passes the checksum.
func Validate(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		ch := number[i]
		if ch < '0' || ch > '9' {
			return false
		}
		d := int(ch - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// CardLast4 strips spaces and dashes from a card number, checks its length
// and checksum, and returns only the last four digits.
func CardLast4(number string) (string, bool) {
	digits := separators.Replace(number)
	if len(digits) < minCardDigits || len(digits) > maxCardDigits || !Validate(digits) {
		return "", false
	}
	return digits[len(digits)-4:], true
}
