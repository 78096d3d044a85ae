package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodePolicy selects how OTP digits are drawn.
type CodePolicy int

const (
	// CodePolicyUniform draws every digit independently and uniformly.
	// This is the default policy.
	CodePolicyUniform CodePolicy = iota

	// CodePolicyDistinct draws digits without repetition. Only valid for
	// lengths up to 10.
	CodePolicyDistinct
)

const (
	// MinCodeLength and MaxCodeLength bound the configurable OTP length.
	MinCodeLength = 4
	MaxCodeLength = 10
)

var ten = big.NewInt(10)

// GenerateCode generates a cryptographically secure numeric OTP of exactly
// length digits. Each digit is drawn from crypto/rand, so leading zeros are
// as likely as any other digit and frequencies are unbiased over a large
// sample.
func GenerateCode(length int, policy CodePolicy) (string, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return "", fmt.Errorf("code length %d out of range [%d,%d]", length, MinCodeLength, MaxCodeLength)
	}

	switch policy {
	case CodePolicyUniform:
		return generateUniform(length)
	case CodePolicyDistinct:
		return generateDistinct(length)
	default:
		return "", fmt.Errorf("unknown code policy %d", policy)
	}
}

func generateUniform(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

func generateDistinct(length int) (string, error) {
	digits := []byte("0123456789")
	code := make([]byte, 0, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		idx := n.Int64()
		code = append(code, digits[idx])
		digits = append(digits[:idx], digits[idx+1:]...)
	}
	return string(code), nil
}
