package withdraw

import (
	"context"
	"net/http"
	"strings"

	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/provider"
	"go.uber.org/zap"
)

// PreviewResult is the outcome of probing the withdraw-preview endpoint for
// one candidate across the full parameter-shape matrix.
type PreviewResult struct {
	OK        bool
	Status    int
	Raw       any
	UsedKey   string
	UsedValue any
}

// CommitResult is the outcome of probing the transaction-create endpoint
// for one candidate. Verb records which HTTP verb the winning (or last)
// attempt used.
type CommitResult struct {
	OK        bool
	Status    int
	Raw       any
	UsedKey   string
	UsedValue any
	Verb      string
}

// Prober drives the parameter-shape search against the provider. The API
// contract is not reliably documented, so every (name, value-shape) pair is
// tried until one is accepted; individual rejections are recorded, never
// fatal, and only exhaustion fails.
type Prober struct {
	api     provider.API
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewProber creates a new prober
func NewProber(api provider.API, logger *zap.Logger, m *metrics.Metrics) *Prober {
	return &Prober{api: api, logger: logger, metrics: m}
}

// Preview probes the preview endpoint until one shape returns HTTP 200.
func (p *Prober) Preview(ctx context.Context, driverID int64, amount float64, candidateValue any, includeCommission bool) PreviewResult {
	last := PreviewResult{}
	for _, key := range paramNames {
		for _, val := range valueVariants(candidateValue) {
			if ctx.Err() != nil {
				return last
			}

			payload := map[string]any{
				"amount":             amount,
				key:                  val,
				"include_commission": includeCommission,
			}
			res, err := p.api.PreviewWithdrawal(ctx, driverID, payload)
			if err != nil {
				p.logger.Warn("network error on preview attempt",
					zap.String("key", key), zap.Any("value", val), zap.Error(err))
				p.metrics.RecordProbeAttempt("preview", "error")
				last = PreviewResult{Raw: map[string]any{"text": "network_exception"}}
				continue
			}

			last.Status = res.Status
			last.Raw = rawOf(res)
			p.logger.Debug("preview attempt",
				zap.String("key", key), zap.Any("value", val), zap.Int("status", res.Status))

			if res.Status == http.StatusOK {
				p.metrics.RecordProbeAttempt("preview", "accepted")
				return PreviewResult{OK: true, Status: res.Status, Raw: last.Raw, UsedKey: key, UsedValue: val}
			}
			p.metrics.RecordProbeAttempt("preview", "rejected")
		}
	}
	return last
}

// Commit probes the transaction-create endpoint. PUT goes first; a 3xx or
// an HTML body with status below 500 means the endpoint wants POST in this
// environment, so the identical payload is retried with POST before the
// shape is given up on.
func (p *Prober) Commit(ctx context.Context, driverID int64, amount float64, candidateValue any, txTypeID *int64, message string, createPayment, includeCommission bool) CommitResult {
	last := CommitResult{}
	for _, key := range paramNames {
		for _, val := range valueVariants(candidateValue) {
			if ctx.Err() != nil {
				return last
			}

			payload := map[string]any{
				"operation":          "withdraw",
				"amount":             amount,
				key:                  val,
				"create_payment":     createPayment,
				"include_commission": includeCommission,
			}
			if txTypeID != nil {
				payload["transaction_type_id"] = *txTypeID
			}
			if message != "" {
				payload["message"] = message
			}

			res, err := p.api.CreateTransaction(ctx, driverID, http.MethodPut, payload)
			if err != nil {
				p.logger.Warn("network error on PUT create attempt",
					zap.String("key", key), zap.Any("value", val), zap.Error(err))
				p.metrics.RecordProbeAttempt("create", "error")
				last = CommitResult{Raw: map[string]any{"text": "network_exception"}, UsedKey: key, UsedValue: val, Verb: "put"}
				continue
			}

			p.logger.Debug("PUT create attempt",
				zap.String("key", key), zap.Any("value", val), zap.Int("status", res.Status))

			if res.Accepted() {
				p.metrics.RecordProbeAttempt("create", "accepted")
				return CommitResult{OK: true, Status: res.Status, Raw: rawOf(res), UsedKey: key, UsedValue: val, Verb: "put"}
			}

			if wantsPostFallback(res) {
				p.logger.Info("PUT produced redirect/HTML, trying POST fallback",
					zap.String("key", key), zap.Any("value", val), zap.Int("status", res.Status))

				res2, err := p.api.CreateTransaction(ctx, driverID, http.MethodPost, payload)
				if err != nil {
					p.logger.Warn("network error on POST fallback", zap.Error(err))
					p.metrics.RecordProbeAttempt("create", "error")
					last = CommitResult{Raw: map[string]any{"text": "network_exception_post"}, UsedKey: key, UsedValue: val, Verb: "post"}
					continue
				}

				p.logger.Debug("POST fallback attempt",
					zap.String("key", key), zap.Any("value", val), zap.Int("status", res2.Status))

				if res2.Accepted() {
					p.metrics.RecordProbeAttempt("create", "accepted")
					return CommitResult{OK: true, Status: res2.Status, Raw: rawOf(res2), UsedKey: key, UsedValue: val, Verb: "post"}
				}
				p.metrics.RecordProbeAttempt("create", "rejected")
				last = CommitResult{Status: res2.Status, Raw: rawOf(res2), UsedKey: key, UsedValue: val, Verb: "post"}
				continue
			}

			p.metrics.RecordProbeAttempt("create", "rejected")
			last = CommitResult{Status: res.Status, Raw: rawOf(res), UsedKey: key, UsedValue: val, Verb: "put"}
		}
	}
	return last
}

func wantsPostFallback(res *provider.CallResult) bool {
	if res.Status >= 300 && res.Status < 400 {
		return true
	}
	return strings.Contains(res.ContentType, "text/html") && res.Status < 500
}

func rawOf(res *provider.CallResult) any {
	if res.Body != nil {
		return res.Body
	}
	return map[string]any{"status_code": res.Status}
}
