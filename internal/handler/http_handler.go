package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/repository"
	"github.com/fleetpay/withdraw-service/internal/withdraw"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	service  *withdraw.Service
	repo     repository.WithdrawalRepository
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewHTTPHandler creates a new HTTPHandler
func NewHTTPHandler(service *withdraw.Service, repo repository.WithdrawalRepository, gatherer prometheus.Gatherer, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		service:  service,
		repo:     repo,
		gatherer: gatherer,
		logger:   logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *HTTPHandler) SetupRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		withdrawals := api.Group("/withdrawals")
		{
			withdrawals.POST("", h.CreateWithdrawal)
			withdrawals.GET("", h.ListWithdrawals)
			withdrawals.GET("/:id", h.GetWithdrawal)
		}
		drivers := api.Group("/drivers")
		{
			drivers.GET("/:phone/balance", h.GetBalance)
			drivers.GET("/:phone/antifraud", h.GetAntifraud)
			drivers.GET("/:phone/payments", h.GetPayments)
		}
	}
}

// Health returns the health status
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "withdraw-service",
	})
}

// Ready returns the readiness status
func (h *HTTPHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "withdraw-service",
	})
}

type withdrawalRequestBody struct {
	Phone             string          `json:"phone" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	CardNumber        string          `json:"cardNumber"`
	BankHint          string          `json:"bankHint"`
	Requisites        string          `json:"requisites"`
	TxTypeID          *int64          `json:"txTypeId"`
	UsePreview        *bool           `json:"usePreview"`
	IncludeCommission *bool           `json:"includeCommission"`
	CreatePayment     *bool           `json:"createPayment"`
}

// CreateWithdrawal runs a withdrawal synchronously and returns the audit
// record. A failed run is still a 200: the outcome lives in the result.
func (h *HTTPHandler) CreateWithdrawal(c *gin.Context) {
	var body withdrawalRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.Withdraw(c.Request.Context(), model.WithdrawalRequest{
		Phone:             body.Phone,
		Amount:            body.Amount,
		CardNumber:        body.CardNumber,
		BankHint:          body.BankHint,
		Requisites:        body.Requisites,
		TxTypeID:          body.TxTypeID,
		UsePreview:        boolOr(body.UsePreview, true),
		IncludeCommission: boolOr(body.IncludeCommission, false),
		CreatePayment:     boolOr(body.CreatePayment, true),
	})
	if err != nil {
		h.logger.Error("Failed to run withdrawal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWithdrawal retrieves a stored withdrawal result by id
func (h *HTTPHandler) GetWithdrawal(c *gin.Context) {
	id := c.Param("id")

	result, err := h.repo.GetResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
			return
		}
		h.logger.Error("Failed to get withdrawal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListWithdrawals lists stored withdrawal results with optional filters
func (h *HTTPHandler) ListWithdrawals(c *gin.Context) {
	filter := repository.ResultFilter{
		Phone:  c.Query("phone"),
		Reason: model.ReasonCode(c.Query("reason")),
	}
	if okParam := c.Query("ok"); okParam != "" {
		ok, err := strconv.ParseBool(okParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ok filter"})
			return
		}
		filter.OK = &ok
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	results, err := h.repo.ListResults(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list withdrawals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": results})
}

// GetBalance returns the driver's current provider balance
func (h *HTTPHandler) GetBalance(c *gin.Context) {
	phone := c.Param("phone")

	balance, found := h.service.BalanceByPhone(c.Request.Context(), phone)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phone": phone, "balance": balance})
}

// GetAntifraud reports whether the driver is flagged by antifraud
func (h *HTTPHandler) GetAntifraud(c *gin.Context) {
	phone := c.Param("phone")
	c.JSON(http.StatusOK, gin.H{
		"phone":     phone,
		"antifraud": h.service.IsAntifraud(c.Request.Context(), phone),
	})
}

// GetPayments lists the driver's recent payments
func (h *HTTPHandler) GetPayments(c *gin.Context) {
	phone := c.Param("phone")

	perPage := 5
	if perPageParam := c.Query("per_page"); perPageParam != "" {
		n, err := strconv.Atoi(perPageParam)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid per_page"})
			return
		}
		perPage = n
	}

	payments, err := h.service.RecentPayments(c.Request.Context(), phone, perPage)
	if err != nil {
		h.logger.Error("Failed to list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
