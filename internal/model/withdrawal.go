package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReasonCode explains the outcome of a withdrawal run
type ReasonCode string

const (
	ReasonCreated                ReasonCode = "created"
	ReasonNeedDriverPhone        ReasonCode = "need_driver_phone"
	ReasonDriverNotFound         ReasonCode = "driver_not_found"
	ReasonDriverMissingID        ReasonCode = "driver_missing_id"
	ReasonInvalidAmount          ReasonCode = "invalid_amount"
	ReasonInsufficientAfterMin   ReasonCode = "insufficient_after_minimum"
	ReasonNoCandidatesFound      ReasonCode = "no_candidates_found"
	ReasonNoCandidateSucceeded   ReasonCode = "no_candidate_succeeded"
)

// CandidateKind classifies a withdrawal destination
type CandidateKind string

const (
	CandidateKindCard      CandidateKind = "card"
	CandidateKindRequisite CandidateKind = "requisite"
	CandidateKindOther     CandidateKind = "other"
)

// Account is a transient read of a driver record in the payments provider.
// It is fetched fresh per operation and never persisted locally.
type Account struct {
	ID      int64           `json:"id"`
	Phone   string          `json:"phone"`
	Balance decimal.Decimal `json:"balance"`

	// Raw keeps the provider payload for diagnostics.
	Raw map[string]any `json:"raw,omitempty"`
}

// Candidate is a ranked withdrawal destination derived from a profile entry.
// Preferred holds the value sent to the API: an integer id, a UUID string, a
// mask string, or the raw object as last resort.
type Candidate struct {
	Kind      CandidateKind  `json:"kind"`
	Raw       map[string]any `json:"raw,omitempty"`
	Preferred any            `json:"preferred"`
	Score     int            `json:"score"`
}

// WithdrawalRequest carries the inputs of one withdrawal run
type WithdrawalRequest struct {
	Phone             string          `json:"phone"`
	Amount            decimal.Decimal `json:"amount"`
	Requisites        string          `json:"requisites,omitempty"`
	CardNumber        string          `json:"cardNumber,omitempty"`
	BankHint          string          `json:"bankHint,omitempty"`
	TxTypeID          *int64          `json:"txTypeId,omitempty"`
	Operation         string          `json:"operation,omitempty"`
	UsePreview        bool            `json:"usePreview"`
	IncludeCommission bool            `json:"includeCommission"`
	CreatePayment     bool            `json:"createPayment"`
}

// AttemptError records one failed preview or create attempt for a candidate
type AttemptError struct {
	Candidate any    `json:"candidate,omitempty"`
	Status    int    `json:"status,omitempty"`
	Raw       any    `json:"raw,omitempty"`
	UsedKey   string `json:"usedKey,omitempty"`
	Tried     string `json:"tried,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WithdrawalResult is the audit record of one withdrawal run
type WithdrawalResult struct {
	ID       string     `json:"id"`
	OK       bool       `json:"ok"`
	Reason   ReasonCode `json:"reason"`
	Phone    string     `json:"phone,omitempty"`
	DriverID int64      `json:"driverId,omitempty"`

	AmountSent decimal.Decimal `json:"amountSent"`
	Allowed    decimal.Decimal `json:"allowed"`
	Adjusted   bool            `json:"adjusted"`
	Notice     string          `json:"notice,omitempty"`

	Candidate any    `json:"candidate,omitempty"`
	UsedKey   string `json:"usedKey,omitempty"`
	UsedValue any    `json:"usedValue,omitempty"`
	Verb      string `json:"verb,omitempty"`
	TxTypeID  *int64 `json:"txTypeId,omitempty"`
	Tx        any    `json:"tx,omitempty"`

	PreviewErrors []AttemptError `json:"previewErrors,omitempty"`
	CreateErrors  []AttemptError `json:"createErrors,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TransactionType is one entry of the provider's transaction-type list
type TransactionType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
