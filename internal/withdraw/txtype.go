package withdraw

import (
	"context"
	"strconv"
	"strings"

	"github.com/fleetpay/withdraw-service/internal/provider"
	"go.uber.org/zap"
)

// operationTypeFallback maps operation names to transaction type ids known
// to be stable in production.
var operationTypeFallback = map[string]int64{
	"withdraw": 14,
}

// operationKeywords matches operations against remote type names; the
// provider labels types in English or Russian depending on tenant.
var operationKeywords = map[string][]string{
	"withdraw": {"withdraw", "payout", "вывод", "выплата"},
	"deposit":  {"deposit", "пополнение", "зачислен"},
	"transfer": {"transfer", "перевод"},
}

// TypeResolver determines which transaction type id to send for an
// operation. A configured override always wins, then an explicit caller id,
// then the static fallback table, then keyword matching against the remote
// type list, then the first listed type. nil means omit the field.
type TypeResolver struct {
	api      provider.API
	override string
	logger   *zap.Logger
}

// NewTypeResolver creates a new transaction type resolver
func NewTypeResolver(api provider.API, override string, logger *zap.Logger) *TypeResolver {
	return &TypeResolver{api: api, override: override, logger: logger}
}

// Resolve returns the transaction type id for operation, or nil when none
// can be determined and the attempt should proceed without one.
func (r *TypeResolver) Resolve(ctx context.Context, operation string, preferredID *int64) *int64 {
	if r.override != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(r.override), 10, 64); err == nil {
			return &id
		}
		r.logger.Debug("configured transaction type override is not an integer",
			zap.String("override", r.override))
	}

	if preferredID != nil {
		return preferredID
	}

	op := strings.ToLower(operation)
	if id, ok := operationTypeFallback[op]; ok {
		return &id
	}

	types, err := r.api.TransactionTypes(ctx)
	if err != nil {
		r.logger.Debug("transaction type list unavailable", zap.Error(err))
		return nil
	}
	if len(types) == 0 {
		return nil
	}

	keywords, ok := operationKeywords[op]
	if !ok {
		keywords = []string{op}
	}
	for _, kw := range keywords {
		for _, t := range types {
			if t.ID != 0 && strings.Contains(strings.ToLower(t.Name), kw) {
				id := t.ID
				return &id
			}
		}
	}

	for _, t := range types {
		if t.ID != 0 {
			id := t.ID
			return &id
		}
	}
	return nil
}
