// Package validation содержит функции валидации входных данных.
package validation

import (
	"unicode"

	"github.com/shopspring/decimal"
)

// IsValidPhone проверяет десятизначный мобильный номер, допускается префикс +91.
func IsValidPhone(phone string) bool {
	if len(phone) == 13 && phone[:3] == "+91" {
		phone = phone[3:]
	}
	if len(phone) != 10 || phone[0] < '6' {
		return false
	}
	return allDigits(phone)
}

// IsValidPincode проверяет шестизначный почтовый индекс без ведущего нуля.
func IsValidPincode(pincode string) bool {
	return len(pincode) == 6 && pincode[0] != '0' && allDigits(pincode)
}

// IsValidCouponCode проверяет код купона: 3–20 латинских букв или цифр.
func IsValidCouponCode(code string) bool {
	if len(code) < 3 || len(code) > 20 {
		return false
	}
	for _, ch := range code {
		if ch > unicode.MaxASCII || !(unicode.IsLetter(ch) || unicode.IsDigit(ch)) {
			return false
		}
	}
	return true
}

// IsValidAmount проверяет денежную сумму: неотрицательная, не больше двух знаков после запятой.
func IsValidAmount(v decimal.Decimal) bool {
	return !v.IsNegative() && v.Equal(v.Round(2))
}

// IsValidPercent проверяет процент в диапазоне [0, 100].
func IsValidPercent(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(decimal.NewFromInt(100))
}

// IsValidRating проверяет оценку отзыва от 1 до 5.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !unicode.IsDigit(ch) || ch > unicode.MaxASCII {
			return false
		}
	}
	return true
}
