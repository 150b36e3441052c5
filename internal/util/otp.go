package util

import (
	"crypto/rand"
	"math/big"
)

// GenerateNumericOTP returns a code of the given number of decimal digits
// drawn from crypto/rand, uniform over [10^(digits-1), 10^digits - 1].
// The first digit is never zero, so the code always prints at full width.
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	low := big.NewInt(1)
	for i := 1; i < digits; i++ {
		low.Mul(low, big.NewInt(10))
	}
	span := new(big.Int).Mul(low, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}
