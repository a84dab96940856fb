package utils

import (
	"crypto/rand"
	"math/big"
)

const codeDigits = "0123456789"

// GenerateRandomCode returns n random digits for mailed confirmation
// codes.
func GenerateRandomCode(n int) string {
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeDigits))))
		if err != nil {
			// crypto/rand only fails when the system source is broken
			code[i] = '0'
			continue
		}
		code[i] = codeDigits[idx.Int64()]
	}
	return string(code)
}
