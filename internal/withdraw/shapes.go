package withdraw

import (
	"strconv"
	"strings"
)

// The provider's preview and create endpoints accept the destination under
// an unknown one of these parameter names. Both endpoints share the list;
// order reflects how often each name has been observed to work. Probing is a
// search over this table, so new shapes are added here, not in control flow.
var paramNames = []string{
	"balance_id",
	"requisites_id",
	"write_off_account_id",
	"bank_account_id",
	"write_off_account",
}

// valueVariants returns the shapes a candidate value is tried as: the value
// itself, then for integer ids an {"id": ...} wrapper and a string form, and
// for UUID-shaped strings a {"uuid": ...} wrapper.
func valueVariants(v any) []any {
	variants := []any{v}
	switch n := v.(type) {
	case int64:
		variants = append(variants, map[string]any{"id": n}, strconv.FormatInt(n, 10))
	case int:
		variants = append(variants, map[string]any{"id": n}, strconv.Itoa(n))
	case string:
		if strings.Contains(n, "-") {
			variants = append(variants, map[string]any{"uuid": n})
		}
	}
	return variants
}
