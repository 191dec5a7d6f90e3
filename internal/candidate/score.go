package candidate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/phone"
)

// Scoring bonuses, additive. An exact card-number match must dominate any
// combination of the weaker signals.
const (
	scoreExactCardMatch = 10000
	scorePerSuffixDigit = 100
	scorePhoneAccount   = 500
	scoreBankHint       = 300
	scoreHasID          = 50
	scoreIsCard         = 20
)

// Rank scores extracted destinations against the caller's hints and returns
// candidates ordered by descending score. The sort is stable: ties keep
// extraction order, so cards stay ahead of requisites at equal score.
func Rank(dests []RawDestination, cardHint, phoneHint, bankHint string) []model.Candidate {
	candidates := make([]model.Candidate, 0, len(dests))
	for _, d := range dests {
		obj := d.Object
		mask := Mask(obj)
		score := 0

		if cardHint != "" {
			score += phone.SuffixMatchLength(mask, cardHint) * scorePerSuffixDigit
			maskDigits := phone.Normalize(mask)
			if maskDigits != "" && maskDigits == phone.Normalize(cardHint) {
				score += scoreExactCardMatch
			}
		}

		if phoneHint != "" {
			if acct := accountNumberOf(obj); acct != "" {
				acctDigits := phone.Normalize(acct)
				suffix := phone.Last10(phoneHint)
				if suffix != "" && strings.HasSuffix(acctDigits, suffix) {
					score += scorePhoneAccount
				}
			}
		}

		if bankHint != "" && bankMatchesHint(obj, bankHint) {
			score += scoreBankHint
		}

		id, hasID := destinationID(obj)
		if hasID {
			score += scoreHasID
		}

		kind := kindOf(d)
		if kind == model.CandidateKindCard {
			score += scoreIsCard
		}

		candidates = append(candidates, model.Candidate{
			Kind:      kind,
			Raw:       obj,
			Preferred: preferredValue(obj, id, hasID, mask),
			Score:     score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// FallbackFromCardIDs synthesizes zero-score candidates from bare ids in the
// profile's cards list. Used only when extraction produced nothing at all.
func FallbackFromCardIDs(profile map[string]any) []model.Candidate {
	p := profile
	if item, ok := profile["item"].(map[string]any); ok {
		p = item
	}
	cards, ok := p["cards"].([]any)
	if !ok {
		return nil
	}

	var out []model.Candidate
	for _, c := range cards {
		obj, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := docInt64(obj["id"]); ok {
			out = append(out, model.Candidate{
				Kind:      model.CandidateKindCard,
				Raw:       map[string]any{},
				Preferred: id,
				Score:     0,
			})
		}
	}
	return out
}

func kindOf(d RawDestination) model.CandidateKind {
	if d.Source == SourceCards {
		return model.CandidateKindCard
	}
	if _, ok := d.Object["card"].(map[string]any); ok {
		return model.CandidateKindCard
	}
	if d.Source == SourceRequisites {
		return model.CandidateKindRequisite
	}
	return model.CandidateKindOther
}

// destinationID resolves an integer id from the object itself or its nested
// card entry.
func destinationID(obj map[string]any) (int64, bool) {
	if id, ok := docInt64(obj["id"]); ok {
		return id, true
	}
	if card, ok := obj["card"].(map[string]any); ok {
		if id, ok := docInt64(card["id"]); ok {
			return id, true
		}
	}
	return 0, false
}

// preferredValue picks what gets sent to the API for this destination:
// integer id, then UUID-shaped string, then mask, then the raw object.
func preferredValue(obj map[string]any, id int64, hasID bool, mask string) any {
	if hasID {
		return id
	}
	if card, ok := obj["card"].(map[string]any); ok {
		if uuid, ok := card["uuid"].(string); ok && strings.Contains(uuid, "-") {
			return uuid
		}
	}
	if uuid, ok := obj["uuid"].(string); ok && strings.Contains(uuid, "-") {
		return uuid
	}
	if mask != "" {
		return mask
	}
	return obj
}

func accountNumberOf(obj map[string]any) string {
	if v, ok := obj["account_number"].(string); ok && v != "" {
		return v
	}
	if v, ok := obj["description"].(string); ok && v != "" {
		return v
	}
	if additional, ok := obj["additional"].(map[string]any); ok {
		if v, ok := additional["account_number"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// bankMatchesHint reports whether any name/title/bank field of the object
// contains the bank hint, case-insensitively.
func bankMatchesHint(obj map[string]any, bankHint string) bool {
	hint := strings.ToLower(strings.TrimSpace(bankHint))
	if hint == "" {
		return false
	}

	var fields []string
	if v, ok := obj["name"].(string); ok {
		fields = append(fields, v)
	}
	if v, ok := obj["title"].(string); ok {
		fields = append(fields, v)
	}
	if card, ok := obj["card"].(map[string]any); ok {
		if v, ok := card["name"].(string); ok {
			fields = append(fields, v)
		}
	}
	if additional, ok := obj["additional"].(map[string]any); ok {
		for _, k := range []string{"bank_name", "name", "title"} {
			if v, ok := additional[k].(string); ok {
				fields = append(fields, v)
			}
		}
	}
	if exch, ok := obj["exchange"].(map[string]any); ok {
		if v, ok := exch["name"].(string); ok {
			fields = append(fields, v)
		}
	}

	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), hint) {
			return true
		}
	}
	return false
}

func docInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n == 0 {
			return 0, false
		}
		return int64(n), true
	case int64:
		if n == 0 {
			return 0, false
		}
		return n, true
	case int:
		if n == 0 {
			return 0, false
		}
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil && i != 0 {
			return i, true
		}
	}
	return 0, false
}
