package withdraw

import (
	"context"
	"strings"
	"time"

	"github.com/fleetpay/withdraw-service/internal/candidate"
	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/phone"
	"github.com/fleetpay/withdraw-service/internal/provider"
	"github.com/fleetpay/withdraw-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// minRemain is the balance floor that must stay on the account after any
// withdrawal. No code path may commit an amount that would leave less.
var minRemain = decimal.NewFromInt(50)

// Service orchestrates withdrawal runs: locate the driver, extract and rank
// destination candidates, resolve the transaction type, then walk candidates
// in ranked order previewing and committing until one succeeds. Attempts are
// strictly sequential; a commit has ledger side effects and results must be
// interpreted in preference order.
type Service struct {
	api     provider.API
	repo    repository.WithdrawalRepository
	types   *TypeResolver
	prober  *Prober
	logger  *zap.Logger
	metrics *metrics.Metrics

	// delay between failed candidates, zero in tests
	retryDelay time.Duration
}

// NewService creates a new withdrawal service
func NewService(
	api provider.API,
	repo repository.WithdrawalRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
	txTypeOverride string,
	retryDelay time.Duration,
) *Service {
	return &Service{
		api:        api,
		repo:       repo,
		types:      NewTypeResolver(api, txTypeOverride, logger),
		prober:     NewProber(api, logger, m),
		logger:     logger,
		metrics:    m,
		retryDelay: retryDelay,
	}
}

// Withdraw runs one withdrawal end to end and returns the audit record.
// Every failure is a returned result with a reason code; errors surface only
// for infrastructure problems like a failed audit save.
func (s *Service) Withdraw(ctx context.Context, req model.WithdrawalRequest) (*model.WithdrawalResult, error) {
	start := time.Now()
	result := &model.WithdrawalResult{
		ID:        uuid.NewString(),
		Phone:     req.Phone,
		CreatedAt: start,
	}

	defer func() {
		s.metrics.RecordWithdrawal(string(result.Reason), result.OK, time.Since(start).Seconds())
	}()

	s.run(ctx, req, result)

	if s.repo != nil {
		if err := s.repo.SaveResult(ctx, result); err != nil {
			s.logger.Error("failed to save withdrawal result",
				zap.String("withdrawalId", result.ID), zap.Error(err))
			return result, err
		}
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, req model.WithdrawalRequest, result *model.WithdrawalResult) {
	normalized := phone.Normalize(req.Phone)
	if normalized == "" {
		result.Reason = model.ReasonNeedDriverPhone
		return
	}

	if !req.Amount.IsPositive() {
		result.Reason = model.ReasonInvalidAmount
		return
	}

	driver, found := s.findDriver(ctx, normalized)
	if !found {
		result.Reason = model.ReasonDriverNotFound
		return
	}
	if driver.ID == 0 {
		result.Reason = model.ReasonDriverMissingID
		return
	}
	result.DriverID = driver.ID

	allowed := driver.Balance.Sub(minRemain)
	if allowed.IsNegative() {
		allowed = decimal.Zero
	}
	result.Allowed = allowed
	if !allowed.IsPositive() {
		result.Reason = model.ReasonInsufficientAfterMin
		return
	}

	amountToSend := req.Amount
	if amountToSend.GreaterThan(allowed) {
		amountToSend = allowed
		result.Adjusted = true
		result.Notice = "amount reduced to " + amountToSend.StringFixed(2) +
			" so that " + minRemain.String() + " remains on the account"
	}
	result.AmountSent = amountToSend

	profile, err := s.api.DriverProfile(ctx, driver.ID)
	if err != nil {
		// tolerated as an empty profile, extraction just finds nothing
		s.logger.Warn("profile fetch failed",
			zap.Int64("driverId", driver.ID), zap.Error(err))
		profile = nil
	}

	candidates := candidate.Rank(candidate.Extract(profile), req.CardNumber, req.Phone, req.BankHint)
	if len(candidates) == 0 {
		candidates = candidate.FallbackFromCardIDs(profile)
	}
	s.metrics.RecordCandidates(len(candidates))
	if len(candidates) == 0 {
		result.Reason = model.ReasonNoCandidatesFound
		return
	}

	operation := strings.ToLower(req.Operation)
	if operation == "" {
		operation = "withdraw"
	}
	txType := s.types.Resolve(ctx, operation, req.TxTypeID)
	result.TxTypeID = txType

	message := req.Requisites
	if message == "" {
		message = "Manual withdrawal"
	}

	amount := amountToSend.InexactFloat64()

	for i, cand := range candidates {
		s.logger.Info("trying candidate",
			zap.Int("index", i+1),
			zap.Int("total", len(candidates)),
			zap.String("kind", string(cand.Kind)),
			zap.Any("preferred", cand.Preferred),
			zap.Int("score", cand.Score),
		)

		if req.UsePreview && operation == "withdraw" {
			preview := s.prober.Preview(ctx, driver.ID, amount, cand.Preferred, req.IncludeCommission)
			if !preview.OK {
				s.logger.Warn("preview failed for candidate",
					zap.Any("preferred", cand.Preferred),
					zap.Int("status", preview.Status),
				)
				result.PreviewErrors = append(result.PreviewErrors, model.AttemptError{
					Candidate: cand.Preferred,
					Status:    preview.Status,
					Raw:       preview.Raw,
				})
				continue
			}
			s.logger.Info("preview accepted",
				zap.Any("preferred", cand.Preferred),
				zap.String("usedKey", preview.UsedKey),
			)
		}

		commit := s.prober.Commit(ctx, driver.ID, amount, cand.Preferred, txType, message, req.CreatePayment, req.IncludeCommission)
		if commit.OK {
			s.logger.Info("withdrawal created",
				zap.Int64("driverId", driver.ID),
				zap.Any("preferred", cand.Preferred),
				zap.String("usedKey", commit.UsedKey),
				zap.String("verb", commit.Verb),
			)
			result.OK = true
			result.Reason = model.ReasonCreated
			result.Candidate = cand.Preferred
			result.UsedKey = commit.UsedKey
			result.UsedValue = commit.UsedValue
			result.Verb = commit.Verb
			result.Tx = commit.Raw
			return
		}

		result.CreateErrors = append(result.CreateErrors, model.AttemptError{
			Candidate: cand.Preferred,
			Status:    commit.Status,
			Raw:       commit.Raw,
			UsedKey:   commit.UsedKey,
			Tried:     commit.Verb,
		})

		// brief pause before the next candidate to avoid hammering the API
		if s.retryDelay > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				result.Reason = model.ReasonNoCandidateSucceeded
				return
			}
		}
	}

	result.Reason = model.ReasonNoCandidateSucceeded
}

// findDriver resolves an account from the fuzzy remote search by matching
// normalized phone suffixes locally. Lookup failures and a genuinely absent
// driver are deliberately indistinguishable here.
func (s *Service) findDriver(ctx context.Context, normalizedPhone string) (model.Account, bool) {
	accounts, err := s.api.SearchDrivers(ctx, normalizedPhone)
	if err != nil {
		s.logger.Warn("driver search failed", zap.Error(err))
		return model.Account{}, false
	}

	suffix := phone.Last10(normalizedPhone)
	for _, acc := range accounts {
		if strings.HasSuffix(phone.Normalize(acc.Phone), suffix) {
			return acc, true
		}
	}
	return model.Account{}, false
}
