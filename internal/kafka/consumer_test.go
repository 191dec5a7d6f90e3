package kafka

import (
	"context"
	"testing"

	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/provider"
	"github.com/fleetpay/withdraw-service/internal/withdraw"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	lastCreate map[string]any
}

func (f *fakeAPI) Name() string { return "fake" }

func (f *fakeAPI) SearchDrivers(ctx context.Context, query string) ([]model.Account, error) {
	return []model.Account{{ID: 7, Phone: "89137619949", Balance: decimal.NewFromInt(200)}}, nil
}

func (f *fakeAPI) DriverProfile(ctx context.Context, driverID int64) (map[string]any, error) {
	return map[string]any{"cards": []any{map[string]any{"id": float64(42)}}}, nil
}

func (f *fakeAPI) TransactionTypes(ctx context.Context) ([]model.TransactionType, error) {
	return nil, nil
}

func (f *fakeAPI) DriverPayments(ctx context.Context, driverID int64, perPage int) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeAPI) PreviewWithdrawal(ctx context.Context, driverID int64, payload map[string]any) (*provider.CallResult, error) {
	return &provider.CallResult{Status: 200}, nil
}

func (f *fakeAPI) CreateTransaction(ctx context.Context, driverID int64, verb string, payload map[string]any) (*provider.CallResult, error) {
	f.lastCreate = payload
	return &provider.CallResult{Status: 201}, nil
}

func newConsumerForTest(api *fakeAPI) *Consumer {
	m := metrics.New(prometheus.NewRegistry(), "test")
	svc := withdraw.NewService(api, nil, zap.NewNop(), m, "", 0)
	return &Consumer{service: svc, logger: zap.NewNop()}
}

func TestHandleMessage_RunsWithdrawalWithDefaults(t *testing.T) {
	api := &fakeAPI{}
	c := newConsumerForTest(api)

	msg := kafkago.Message{Value: []byte(`{"phone":"89137619949","amount":"100"}`)}
	require.NoError(t, c.handleMessage(context.Background(), msg))

	require.NotNil(t, api.lastCreate)
	assert.Equal(t, 100.0, api.lastCreate["amount"])
	// absent mode flags take the pipeline defaults
	assert.Equal(t, true, api.lastCreate["create_payment"])
	assert.Equal(t, false, api.lastCreate["include_commission"])
}

func TestHandleMessage_ExplicitFlagsOverrideDefaults(t *testing.T) {
	api := &fakeAPI{}
	c := newConsumerForTest(api)

	msg := kafkago.Message{Value: []byte(
		`{"phone":"89137619949","amount":"100","createPayment":false,"includeCommission":true}`,
	)}
	require.NoError(t, c.handleMessage(context.Background(), msg))

	require.NotNil(t, api.lastCreate)
	assert.Equal(t, false, api.lastCreate["create_payment"])
	assert.Equal(t, true, api.lastCreate["include_commission"])
}

func TestHandleMessage_MalformedJSON(t *testing.T) {
	c := newConsumerForTest(&fakeAPI{})

	msg := kafkago.Message{Value: []byte(`{not json`)}
	assert.Error(t, c.handleMessage(context.Background(), msg))
}
