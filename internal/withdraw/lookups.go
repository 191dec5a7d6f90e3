package withdraw

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fleetpay/withdraw-service/internal/phone"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceByPhone returns the driver's current balance. A driver that cannot
// be found reports a zero balance and found=false.
func (s *Service) BalanceByPhone(ctx context.Context, phoneStr string) (decimal.Decimal, bool) {
	normalized := phone.Normalize(phoneStr)
	if normalized == "" {
		return decimal.Zero, false
	}
	driver, found := s.findDriver(ctx, normalized)
	if !found {
		return decimal.Zero, false
	}
	return driver.Balance, true
}

// IsAntifraud reports whether the driver's profile carries an antifraud
// marker. The provider exposes no dedicated field, so the mode/flags/status
// entries are checked first and the whole document last.
func (s *Service) IsAntifraud(ctx context.Context, phoneStr string) bool {
	normalized := phone.Normalize(phoneStr)
	if normalized == "" {
		return false
	}
	driver, found := s.findDriver(ctx, normalized)
	if !found || driver.ID == 0 {
		return false
	}

	profile, err := s.api.DriverProfile(ctx, driver.ID)
	if err != nil {
		s.logger.Warn("profile fetch failed for antifraud check",
			zap.Int64("driverId", driver.ID), zap.Error(err))
		return false
	}

	for _, key := range []string{"mode", "flags", "status"} {
		if containsAntifraud(profile[key]) {
			return true
		}
	}

	if data, err := json.Marshal(profile); err == nil {
		return strings.Contains(strings.ToLower(string(data)), "antifraud")
	}
	return false
}

// RecentPayments lists the driver's most recent payments. An unknown driver
// yields an empty list.
func (s *Service) RecentPayments(ctx context.Context, phoneStr string, perPage int) ([]map[string]any, error) {
	normalized := phone.Normalize(phoneStr)
	if normalized == "" {
		return nil, nil
	}
	driver, found := s.findDriver(ctx, normalized)
	if !found || driver.ID == 0 {
		return nil, nil
	}
	return s.api.DriverPayments(ctx, driver.ID, perPage)
}

func containsAntifraud(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(val), "antifraud")
	case map[string]any:
		for _, inner := range val {
			if s, ok := inner.(string); ok && strings.Contains(strings.ToLower(s), "antifraud") {
				return true
			}
		}
	case []any:
		for _, inner := range val {
			if s, ok := inner.(string); ok && strings.Contains(strings.ToLower(s), "antifraud") {
				return true
			}
		}
	}
	return false
}
