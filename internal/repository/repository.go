package repository

import (
	"context"

	"github.com/fleetpay/withdraw-service/internal/model"
)

// WithdrawalRepository stores the audit trail of withdrawal runs
type WithdrawalRepository interface {
	// SaveResult saves or updates a withdrawal result
	SaveResult(ctx context.Context, result *model.WithdrawalResult) error

	// GetResult retrieves a withdrawal result by ID
	GetResult(ctx context.Context, id string) (*model.WithdrawalResult, error)

	// ListResults retrieves withdrawal results with optional filters
	ListResults(ctx context.Context, filter ResultFilter) ([]*model.WithdrawalResult, error)
}

// ResultFilter defines filters for listing withdrawal results
type ResultFilter struct {
	OK     *bool
	Reason model.ReasonCode
	Phone  string
	Limit  int
}
