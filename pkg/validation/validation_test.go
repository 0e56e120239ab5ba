package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStreamCode(t *testing.T) {
	valid := []string{"match-42", "ABC_123", "a", strings.Repeat("x", 100)}
	for _, code := range valid {
		assert.NoError(t, ValidateStreamCode(code), code)
	}

	invalid := []string{
		"",
		"   ",
		strings.Repeat("x", 101),
		"match 42",
		"match/42",
		"match.42",
		"кирилица",
	}
	for _, code := range invalid {
		assert.Error(t, ValidateStreamCode(code), code)
	}
}
