/**
 * @description
 * Domain models for the fee-service. These structs represent fee-bearing
 * transactions, withdrawals, payouts and the calculation results exchanged
 * between the API layer and the business logic.
 *
 * @notes
 * - All monetary amounts are stored as `int64` in cents to avoid
 *   floating-point inaccuracies with financial data. Formatting to
 *   2-decimal dollar strings happens only at the presentation boundary.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Transaction type values recorded on a FeeTransaction.
const (
	TransactionTypeTrading    = "trading"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeDeposit    = "deposit"
	TransactionTypePayout     = "payout"
)

// AssetType identifies the traded instrument class for trading fees.
type AssetType string

const (
	AssetTypeStock   AssetType = "stock"
	AssetTypeCrypto  AssetType = "crypto"
	AssetTypeOptions AssetType = "options"
)

// Valid reports whether the asset type is one the fee schedule knows about.
func (a AssetType) Valid() bool {
	switch a {
	case AssetTypeStock, AssetTypeCrypto, AssetTypeOptions:
		return true
	}
	return false
}

// WithdrawalMethod identifies how funds leave the platform.
type WithdrawalMethod string

const (
	WithdrawalMethodACH     WithdrawalMethod = "ach"
	WithdrawalMethodWire    WithdrawalMethod = "wire"
	WithdrawalMethodCrypto  WithdrawalMethod = "crypto"
	WithdrawalMethodInstant WithdrawalMethod = "instant"
)

// Valid reports whether the withdrawal method is supported.
func (m WithdrawalMethod) Valid() bool {
	switch m {
	case WithdrawalMethodACH, WithdrawalMethodWire, WithdrawalMethodCrypto, WithdrawalMethodInstant:
		return true
	}
	return false
}

// DepositMethod identifies how funds enter the platform.
type DepositMethod string

const (
	DepositMethodACH        DepositMethod = "ach"
	DepositMethodWire       DepositMethod = "wire"
	DepositMethodCreditCard DepositMethod = "creditCard"
	DepositMethodCrypto     DepositMethod = "crypto"
)

// Valid reports whether the deposit method is supported.
func (m DepositMethod) Valid() bool {
	switch m {
	case DepositMethodACH, DepositMethodWire, DepositMethodCreditCard, DepositMethodCrypto:
		return true
	}
	return false
}

// PayoutSpeed identifies how quickly a creator payout settles.
type PayoutSpeed string

const (
	PayoutSpeedStandard PayoutSpeed = "standard"
	PayoutSpeedExpress  PayoutSpeed = "express"
	PayoutSpeedInstant  PayoutSpeed = "instant"
)

// Valid reports whether the payout speed is supported.
func (s PayoutSpeed) Valid() bool {
	switch s {
	case PayoutSpeedStandard, PayoutSpeedExpress, PayoutSpeedInstant:
		return true
	}
	return false
}

// Subscription tiers used for fee discounts.
const (
	TierFree       = "free"
	TierPro        = "pro"
	TierElite      = "elite"
	TierEnterprise = "enterprise"
)

// FeeTransaction is the immutable audit record written once per
// fee-bearing operation. It maps to the `fee_transactions` table.
type FeeTransaction struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	TransactionType string                 `json:"transaction_type"`
	Amount          int64                  `json:"amount"` // in cents
	Fee             int64                  `json:"fee"`    // in cents
	Tax             int64                  `json:"tax"`    // in cents
	Total           int64                  `json:"total"`  // in cents
	Currency        string                 `json:"currency"`
	Metadata        map[string]interface{} `json:"metadata"`
	CreatedAt       time.Time              `json:"created_at"`
}

// Subtype returns the method/speed/asset-class recorded in metadata, if any.
func (t *FeeTransaction) Subtype() string {
	if t.Metadata == nil {
		return ""
	}
	if s, ok := t.Metadata["subtype"].(string); ok {
		return s
	}
	return ""
}

// Withdrawal represents a pending outbound transfer. Status transitions
// after PENDING are driven by the settlement pipeline, not this service.
type Withdrawal struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Amount      int64                  `json:"amount"` // gross, in cents
	Fee         int64                  `json:"fee"`
	Total       int64                  `json:"total"` // net of fee and tax
	Method      string                 `json:"method"`
	Destination string                 `json:"destination"`
	Status      string                 `json:"status"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Payout represents a pending creator/affiliate disbursement.
type Payout struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Amount      int64                  `json:"amount"`
	Fee         int64                  `json:"fee"`
	Total       int64                  `json:"total"`
	Method      string                 `json:"method"`
	Destination string                 `json:"destination"`
	Status      string                 `json:"status"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// StatusPending is the initial status for withdrawals and payouts.
const StatusPending = "PENDING"

// TaxProfile holds the address details used for tax calculation and the
// billing-provider customer reference, if one exists.
type TaxProfile struct {
	UserID           uuid.UUID `json:"user_id"`
	Country          string    `json:"country"`
	State            string    `json:"state,omitempty"`
	PostalCode       string    `json:"postal_code,omitempty"`
	City             string    `json:"city,omitempty"`
	Address          string    `json:"address,omitempty"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
}

// FeeBreakdown carries the 2-decimal dollar-string rendering of a
// calculation for API consumers.
type FeeBreakdown struct {
	Subtotal string `json:"subtotal"`
	Fee      string `json:"fee"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// FeeCalculation is the result of a fee computation. Amounts are in cents;
// the breakdown mirrors them as formatted dollar strings.
type FeeCalculation struct {
	Amount    int64        `json:"amount"`
	Fee       int64        `json:"fee"`
	Tax       int64        `json:"tax"`
	Total     int64        `json:"total"`
	FeeRate   int64        `json:"feeRate,omitempty"` // basis points
	Breakdown FeeBreakdown `json:"breakdown"`
}

// FeeSummaryEntry is one fee transaction rendered for the summary response.
type FeeSummaryEntry struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Subtype string    `json:"subtype,omitempty"`
	Amount  string    `json:"amount"`
	Fee     string    `json:"fee"`
	Tax     string    `json:"tax"`
	Total   string    `json:"total"`
	Date    time.Time `json:"date"`
}

// FeeTypeSummary aggregates fees and taxes for one transaction type.
type FeeTypeSummary struct {
	Count          int    `json:"count"`
	Fees           int64  `json:"fees"`
	Taxes          int64  `json:"taxes"`
	FeesFormatted  string `json:"feesFormatted"`
	TaxesFormatted string `json:"taxesFormatted"`
}

// FeeSummary aggregates a user's fee transactions over a date range.
type FeeSummary struct {
	TotalFees           int64                     `json:"totalFees"`
	TotalTaxes          int64                     `json:"totalTaxes"`
	TotalFeesFormatted  string                    `json:"totalFeesFormatted"`
	TotalTaxesFormatted string                    `json:"totalTaxesFormatted"`
	ByType              map[string]FeeTypeSummary `json:"byType"`
	Transactions        []FeeSummaryEntry         `json:"transactions"`
}

// FormatCents renders an amount in cents as a 2-decimal dollar string,
// e.g. 12345 -> "123.45". Negative amounts keep a single leading sign.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
