package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JumpClient implements API against the Jump taxi-public HTTP API. The
// client authentication key travels either as a Client-Key header or as a
// client_key query parameter depending on configuration.
type JumpClient struct {
	baseURL    string
	clientKey  string
	keyInQuery bool

	// writes must see raw 3xx responses, so they use a non-following client
	read  *http.Client
	write *http.Client

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewJumpClient creates a new Jump API client
func NewJumpClient(baseURL, clientKey string, keyInQuery bool, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *JumpClient {
	return &JumpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientKey:  clientKey,
		keyInQuery: keyInQuery,
		read:       &http.Client{Timeout: timeout},
		write: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger,
		metrics: m,
	}
}

func (c *JumpClient) Name() string {
	return "jump"
}

func (c *JumpClient) SearchDrivers(ctx context.Context, query string) ([]model.Account, error) {
	q := url.Values{"search": {query}}
	status, body, err := c.do(ctx, http.MethodGet, "/drivers", q, nil, "search_drivers")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Warn("GET /drivers returned non-200",
			zap.Int("status", status),
			zap.ByteString("body", truncate(body, 300)),
		)
		return nil, fmt.Errorf("search drivers: status %d", status)
	}

	var j any
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, fmt.Errorf("parse drivers response: %w", err)
	}

	var accounts []model.Account
	for _, it := range itemsOf(j) {
		doc, ok := it.(map[string]any)
		if !ok {
			continue
		}
		accounts = append(accounts, accountFromDoc(doc))
	}
	return accounts, nil
}

func (c *JumpClient) DriverProfile(ctx context.Context, driverID int64) (map[string]any, error) {
	path := fmt.Sprintf("/drivers/%d", driverID)
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil, "driver_profile")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Warn("GET /drivers/{id} returned non-200",
			zap.Int64("driverId", driverID),
			zap.Int("status", status),
			zap.ByteString("body", truncate(body, 500)),
		)
		return nil, fmt.Errorf("driver profile: status %d", status)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return doc, nil
}

func (c *JumpClient) TransactionTypes(ctx context.Context) ([]model.TransactionType, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/transaction-types", nil, nil, "transaction_types")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("transaction types: status %d", status)
	}

	var j any
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, fmt.Errorf("parse transaction types: %w", err)
	}

	var types []model.TransactionType
	for _, it := range itemsOf(j) {
		doc, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id, ok := toInt64(doc["id"])
		if !ok {
			continue
		}
		types = append(types, model.TransactionType{ID: id, Name: stringOf(doc["name"])})
	}
	return types, nil
}

func (c *JumpClient) DriverPayments(ctx context.Context, driverID int64, perPage int) ([]map[string]any, error) {
	q := url.Values{
		"driver_ids": {strconv.FormatInt(driverID, 10)},
		"per_page":   {strconv.Itoa(perPage)},
	}
	status, body, err := c.do(ctx, http.MethodGet, "/payments", q, nil, "driver_payments")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("driver payments: status %d", status)
	}

	var j any
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, fmt.Errorf("parse payments: %w", err)
	}

	var payments []map[string]any
	for _, it := range itemsOf(j) {
		if doc, ok := it.(map[string]any); ok {
			payments = append(payments, doc)
		}
	}
	return payments, nil
}

func (c *JumpClient) PreviewWithdrawal(ctx context.Context, driverID int64, payload map[string]any) (*CallResult, error) {
	path := fmt.Sprintf("/drivers/%d/transactions-withdraw-preview", driverID)
	return c.call(ctx, http.MethodPost, path, payload, "withdraw_preview")
}

func (c *JumpClient) CreateTransaction(ctx context.Context, driverID int64, verb string, payload map[string]any) (*CallResult, error) {
	path := fmt.Sprintf("/drivers/%d/transactions", driverID)
	return c.call(ctx, verb, path, payload, "create_transaction")
}

// call wraps do for probe-style endpoints where any status is a result, not
// an error; only transport failures surface as errors.
func (c *JumpClient) call(ctx context.Context, method, path string, payload map[string]any, endpoint string) (*CallResult, error) {
	status, body, contentType, err := c.doFull(ctx, method, path, nil, payload, endpoint)
	if err != nil {
		return nil, err
	}
	res := &CallResult{Status: status, ContentType: contentType}
	text := strings.TrimSpace(string(body))
	if text != "" {
		var parsed any
		if json.Unmarshal(body, &parsed) == nil {
			res.Body = parsed
		} else {
			res.Body = map[string]any{"text": text, "status_code": status}
		}
	}
	return res, nil
}

func (c *JumpClient) do(ctx context.Context, method, path string, query url.Values, payload map[string]any, endpoint string) (int, []byte, error) {
	status, body, _, err := c.doFull(ctx, method, path, query, payload, endpoint)
	return status, body, err
}

func (c *JumpClient) doFull(ctx context.Context, method, path string, query url.Values, payload map[string]any, endpoint string) (int, []byte, string, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.clientKey != "" && c.keyInQuery {
		query.Set("client_key", c.clientKey)
	}

	u := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, "", fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.clientKey != "" && !c.keyInQuery {
		req.Header.Set("Client-Key", c.clientKey)
	}

	client := c.read
	if method == http.MethodPut || method == http.MethodPost {
		client = c.write
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.metrics.RecordProviderRequest(endpoint, "network_error", time.Since(start).Seconds())
		return 0, nil, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("error closing response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordProviderRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return resp.StatusCode, nil, "", fmt.Errorf("read response body: %w", err)
	}

	return resp.StatusCode, body, resp.Header.Get("Content-Type"), nil
}

// itemsOf unwraps list responses that arrive either bare or under an
// "items"/"data" envelope.
func itemsOf(j any) []any {
	switch v := j.(type) {
	case []any:
		return v
	case map[string]any:
		if items, ok := v["items"].([]any); ok {
			return items
		}
		if items, ok := v["data"].([]any); ok {
			return items
		}
	}
	return nil
}

func accountFromDoc(doc map[string]any) model.Account {
	acc := model.Account{Raw: doc}
	if id, ok := toInt64(doc["id"]); ok {
		acc.ID = id
	}
	acc.Phone = stringOf(doc["phone"])
	acc.Balance = decimalOf(doc["balance"])
	return acc
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func decimalOf(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
