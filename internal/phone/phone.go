// Package phone canonicalizes free-form phone numbers and card-like digit
// strings so they can be compared regardless of formatting.
package phone

// Normalize strips every non-digit character from s. Empty input yields an
// empty string; no length validation happens at this layer.
func Normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Last10 returns the trailing 10 digits of the normalized form of s, or the
// whole normalized string when it is shorter. Two numbers belong to the same
// account when their Last10 values are equal, which absorbs country-code
// prefix variance (8..., +7..., 7...).
func Last10(s string) string {
	d := Normalize(s)
	if len(d) > 10 {
		return d[len(d)-10:]
	}
	return d
}

// SameSuffix reports whether a and b agree on their last 10 digits.
func SameSuffix(a, b string) bool {
	da, db := Last10(a), Last10(b)
	return da != "" && da == db
}

// SuffixMatchLength counts how many trailing digits a and b share after
// normalization. Either side empty gives 0.
func SuffixMatchLength(a, b string) int {
	da, db := Normalize(a), Normalize(b)
	if da == "" || db == "" {
		return 0
	}
	n := 0
	ai, bi := len(da)-1, len(db)-1
	for ai >= 0 && bi >= 0 && da[ai] == db[bi] {
		n++
		ai--
		bi--
	}
	return n
}
