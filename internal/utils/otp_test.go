package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeLengthAndDigits(t *testing.T) {
	for length := MinCodeLength; length <= MaxCodeLength; length++ {
		for _, policy := range []CodePolicy{CodePolicyUniform, CodePolicyDistinct} {
			code, err := GenerateCode(length, policy)
			require.NoError(t, err)
			require.Len(t, code, length)
			for _, ch := range code {
				assert.True(t, ch >= '0' && ch <= '9', "non-digit %q in code %s", ch, code)
			}
		}
	}
}

func TestGenerateCodeRejectsBadLength(t *testing.T) {
	for _, length := range []int{0, 3, 11, -1} {
		_, err := GenerateCode(length, CodePolicyUniform)
		assert.Error(t, err, "length %d", length)
	}
}

func TestGenerateCodeDistinctDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(10, CodePolicyDistinct)
		require.NoError(t, err)
		seen := make(map[rune]bool)
		for _, ch := range code {
			assert.False(t, seen[ch], "repeated digit %q in %s", ch, code)
			seen[ch] = true
		}
	}
}

// Digit frequencies should be roughly uniform over a large sample. The
// tolerance is generous; the point is to catch a biased or constant source,
// not to be a statistics suite.
func TestGenerateCodeUniformity(t *testing.T) {
	const samples = 5000
	counts := make(map[byte]int)
	for i := 0; i < samples; i++ {
		code, err := GenerateCode(6, CodePolicyUniform)
		require.NoError(t, err)
		for j := 0; j < len(code); j++ {
			counts[code[j]]++
		}
	}

	total := samples * 6
	expected := total / 10
	for d := byte('0'); d <= '9'; d++ {
		count := counts[d]
		assert.Greater(t, count, expected/2, "digit %q underrepresented: %d", d, count)
		assert.Less(t, count, expected*2, "digit %q overrepresented: %d", d, count)
	}
}

func TestGenerateCodeNotConstant(t *testing.T) {
	first, err := GenerateCode(8, CodePolicyUniform)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(8, CodePolicyUniform)
		require.NoError(t, err)
		if code != first {
			return
		}
	}
	t.Fatalf("20 consecutive identical codes: %s", first)
}
