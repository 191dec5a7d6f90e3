package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "79137619949", Normalize("+7 (913) 761-99-49"))
	assert.Equal(t, "89137619949", Normalize("8-913-761-99-49"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("abc-def"))
}

func TestSameSuffix_CountryCodeVariance(t *testing.T) {
	// the same subscriber written with +7 and with the legacy 8 prefix
	assert.True(t, SameSuffix("+7 (913) 761-99-49", "89137619949"))
	assert.True(t, SameSuffix("79137619949", "9137619949"))

	assert.False(t, SameSuffix("+7 (913) 761-99-49", "89137619940"))
	assert.False(t, SameSuffix("", "89137619949"))
}

func TestLast10(t *testing.T) {
	assert.Equal(t, "9137619949", Last10("+7 (913) 761-99-49"))
	assert.Equal(t, "1234567", Last10("123-45-67"))
	assert.Equal(t, "", Last10(""))
}

func TestSuffixMatchLength(t *testing.T) {
	assert.Equal(t, 4, SuffixMatchLength("427638******9949", "9949"))
	assert.Equal(t, 11, SuffixMatchLength("89137619949", "89137619949"))
	assert.Equal(t, 0, SuffixMatchLength("1234", "5678"))
	assert.Equal(t, 0, SuffixMatchLength("", "9949"))
	assert.Equal(t, 0, SuffixMatchLength("mask", "9949"))
}
