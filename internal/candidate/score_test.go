package candidate

import (
	"testing"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardDest(obj map[string]any) RawDestination {
	return RawDestination{Object: obj, Source: SourceCards}
}

func TestRank_ExactMatchDominatesSuffixMatch(t *testing.T) {
	exact := cardDest(map[string]any{"id": float64(1), "mask": "4276380000009949"})
	suffix := cardDest(map[string]any{"id": float64(2), "mask": "5536910000009949"})

	ranked := Rank([]RawDestination{suffix, exact}, "4276380000009949", "", "")
	require.Len(t, ranked, 2)

	assert.Equal(t, int64(1), ranked[0].Preferred)
	// exact match must rank strictly higher than a shared 4-digit suffix
	assert.GreaterOrEqual(t, ranked[0].Score-ranked[1].Score, 9900)
}

func TestRank_PhoneAccountBonus(t *testing.T) {
	linked := RawDestination{
		Object: map[string]any{"account_number": "40817810079137619949"},
		Source: SourceRequisites,
	}
	other := RawDestination{
		Object: map[string]any{"account_number": "40817810000000000001"},
		Source: SourceRequisites,
	}

	ranked := Rank([]RawDestination{other, linked}, "", "+7 (913) 761-99-49", "")
	require.Len(t, ranked, 2)
	assert.Equal(t, "40817810079137619949", ranked[0].Raw["account_number"])
	assert.Equal(t, 500, ranked[0].Score-ranked[1].Score)
}

func TestRank_BankHintBonus(t *testing.T) {
	dests := []RawDestination{
		cardDest(map[string]any{"id": float64(1), "name": "Sber Card"}),
		cardDest(map[string]any{"id": float64(2), "additional": map[string]any{"bank_name": "Tinkoff Black"}}),
	}

	ranked := Rank(dests, "", "", "tinkoff")
	assert.Equal(t, int64(2), ranked[0].Preferred)
}

func TestRank_KindAndIDBonuses(t *testing.T) {
	card := cardDest(map[string]any{"id": float64(1)})
	requisite := RawDestination{Object: map[string]any{}, Source: SourceRequisites}

	ranked := Rank([]RawDestination{requisite, card}, "", "", "")
	require.Len(t, ranked, 2)

	assert.Equal(t, model.CandidateKindCard, ranked[0].Kind)
	assert.Equal(t, 70, ranked[0].Score) // +50 id, +20 card
	assert.Equal(t, model.CandidateKindRequisite, ranked[1].Kind)
	assert.Equal(t, 0, ranked[1].Score)
}

func TestRank_StableOrderOnTies(t *testing.T) {
	first := cardDest(map[string]any{"id": float64(10)})
	second := cardDest(map[string]any{"id": float64(20)})

	ranked := Rank([]RawDestination{first, second}, "", "", "")
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(10), ranked[0].Preferred)
	assert.Equal(t, int64(20), ranked[1].Preferred)
}

func TestRank_PreferredValueResolution(t *testing.T) {
	// integer id wins over everything
	ranked := Rank([]RawDestination{cardDest(map[string]any{
		"id":   float64(7),
		"uuid": "aaaa-bbbb",
		"mask": "427638******9949",
	})}, "", "", "")
	assert.Equal(t, int64(7), ranked[0].Preferred)

	// then a UUID-shaped string
	ranked = Rank([]RawDestination{cardDest(map[string]any{
		"uuid": "aaaa-bbbb",
		"mask": "427638******9949",
	})}, "", "", "")
	assert.Equal(t, "aaaa-bbbb", ranked[0].Preferred)

	// nested card uuid counts too
	ranked = Rank([]RawDestination{cardDest(map[string]any{
		"card": map[string]any{"uuid": "cccc-dddd"},
	})}, "", "", "")
	assert.Equal(t, "cccc-dddd", ranked[0].Preferred)

	// then the mask
	ranked = Rank([]RawDestination{cardDest(map[string]any{
		"mask": "427638******9949",
	})}, "", "", "")
	assert.Equal(t, "427638******9949", ranked[0].Preferred)

	// raw object as last resort
	obj := map[string]any{"name": "no usable value"}
	ranked = Rank([]RawDestination{cardDest(obj)}, "", "", "")
	assert.Equal(t, obj, ranked[0].Preferred)
}

func TestFallbackFromCardIDs(t *testing.T) {
	profile := map[string]any{
		"item": map[string]any{
			"cards": []any{
				map[string]any{"id": float64(11)},
				map[string]any{"name": "no id"},
				"garbage",
				map[string]any{"id": float64(12)},
			},
		},
	}

	cands := FallbackFromCardIDs(profile)
	require.Len(t, cands, 2)
	assert.Equal(t, int64(11), cands[0].Preferred)
	assert.Equal(t, int64(12), cands[1].Preferred)
	assert.Equal(t, 0, cands[0].Score)
	assert.Equal(t, model.CandidateKindCard, cands[0].Kind)

	assert.Empty(t, FallbackFromCardIDs(map[string]any{"cards": "nope"}))
}
