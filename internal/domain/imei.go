package domain

import "strings"

const IMEILength = 15

// NormalizeIMEI strips separators commonly pasted with an IMEI and validates
// the result: 15 digits with a correct Luhn check digit.
func NormalizeIMEI(raw string) (string, error) {
	imei := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '/', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if len(imei) != IMEILength {
		return "", ErrInvalidIMEI
	}
	for _, c := range imei {
		if c < '0' || c > '9' {
			return "", ErrInvalidIMEI
		}
	}
	if !luhnValid(imei) {
		return "", ErrInvalidIMEI
	}
	return imei, nil
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
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
