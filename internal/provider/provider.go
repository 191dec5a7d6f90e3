package provider

import (
	"context"

	"github.com/fleetpay/withdraw-service/internal/model"
)

// CallResult is the outcome of one preview/create call to the provider.
// Body holds the decoded JSON response when the body parses, otherwise a
// {"text": ..., "status_code": ...} fallback so diagnostics never lose the
// raw reply.
type CallResult struct {
	Status      int
	ContentType string
	Body        any
}

// Accepted reports whether status is one of the provider's success codes
// for committing writes (200/201/204).
func (r *CallResult) Accepted() bool {
	return r.Status == 200 || r.Status == 201 || r.Status == 204
}

// API is the raw surface of the Jump payments provider. Implementations do
// not interpret payloads beyond JSON decoding; the withdrawal pipeline owns
// parameter-shape probing and candidate semantics.
type API interface {
	// SearchDrivers queries the fuzzy free-text driver search
	SearchDrivers(ctx context.Context, query string) ([]model.Account, error)

	// DriverProfile fetches the loosely-typed profile document of a driver
	DriverProfile(ctx context.Context, driverID int64) (map[string]any, error)

	// TransactionTypes lists the provider's transaction types
	TransactionTypes(ctx context.Context) ([]model.TransactionType, error)

	// DriverPayments lists recent payments for a driver
	DriverPayments(ctx context.Context, driverID int64, perPage int) ([]map[string]any, error)

	// PreviewWithdrawal POSTs one withdraw-preview attempt
	PreviewWithdrawal(ctx context.Context, driverID int64, payload map[string]any) (*CallResult, error)

	// CreateTransaction issues one transaction-create attempt with the
	// given HTTP verb ("PUT" or "POST"); redirects are never followed
	CreateTransaction(ctx context.Context, driverID int64, verb string, payload map[string]any) (*CallResult, error)

	// Name returns the provider name
	Name() string
}
