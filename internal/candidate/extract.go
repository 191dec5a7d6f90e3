// Package candidate extracts withdrawal destinations from the provider's
// loosely-typed profile documents and ranks them against caller hints. The
// provider guarantees no schema here, so every read is defensive: a shape
// mismatch means "no entries", never an error.
package candidate

// Source tags where in the profile document a destination was found
type Source string

const (
	SourceCards       Source = "cards"
	SourceRequisites  Source = "requisites"
	SourceBankAccount Source = "bank_account"
	SourceWriteOff    Source = "write_off_account"
)

// RawDestination is a card/requisite-like object lifted out of a profile
type RawDestination struct {
	Object map[string]any
	Source Source
}

// Extract walks a profile document and returns every destination-like
// object it can find. Profiles sometimes wrap the payload under "item".
func Extract(profile map[string]any) []RawDestination {
	if len(profile) == 0 {
		return nil
	}
	p := profile
	if item, ok := profile["item"].(map[string]any); ok {
		p = item
	}

	var out []RawDestination
	if cards, ok := p["cards"].([]any); ok {
		for _, c := range cards {
			if obj, ok := c.(map[string]any); ok {
				out = append(out, RawDestination{Object: obj, Source: SourceCards})
			}
		}
	}
	if reqs, ok := p["requisites"].([]any); ok {
		for _, r := range reqs {
			if obj, ok := r.(map[string]any); ok {
				out = append(out, RawDestination{Object: obj, Source: SourceRequisites})
			}
		}
	}
	if obj, ok := p["bank_account"].(map[string]any); ok {
		out = append(out, RawDestination{Object: obj, Source: SourceBankAccount})
	}
	if obj, ok := p["write_off_account"].(map[string]any); ok {
		out = append(out, RawDestination{Object: obj, Source: SourceWriteOff})
	}
	return out
}

// Mask derives a human-meaningful mask string from a destination object.
// Top-level fields win when they contain at least one digit, then nested
// card.mask/card.uuid, then additional.card.mask/additional.account_number.
// Empty string means no mask could be derived.
func Mask(obj map[string]any) string {
	for _, k := range []string{"mask", "card_number", "account_number", "description"} {
		if v, ok := obj[k].(string); ok && hasDigit(v) {
			return v
		}
	}
	if card, ok := obj["card"].(map[string]any); ok {
		if v, ok := card["mask"].(string); ok && v != "" {
			return v
		}
		if v, ok := card["uuid"].(string); ok && v != "" {
			return v
		}
	}
	if additional, ok := obj["additional"].(map[string]any); ok {
		if card, ok := additional["card"].(map[string]any); ok {
			if v, ok := card["mask"].(string); ok && v != "" {
				return v
			}
		}
		if v, ok := additional["account_number"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
