/**
 * @description
 * This file contains the core business logic for the fee-service. The
 * `Service` struct orchestrates fee and tax calculation, coordinating
 * between the fee schedule, the database repository, the external tax
 * engine, and the message broker.
 *
 * Key features:
 * - Implements fee calculation for trading, withdrawals, deposits and payouts.
 * - Applies subscription-tier discounts to percentage-based fees.
 * - Calculates tax via the external engine with a geographic-table fallback.
 * - Persists fee transactions and their linked withdrawal/payout rows atomically.
 * - Publishes events to RabbitMQ for asynchronous processing by other services.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/fees, internal/store: For models, the fee
 *   schedule, and data access.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kairo/fee-service/internal/domain"
	"github.com/kairo/fee-service/internal/fees"
	"github.com/kairo/fee-service/internal/store"
)

// EventsExchange is the topic exchange fee events are published to.
const EventsExchange = "kairo.events"

// ValidationError marks a caller mistake (missing or malformed input) so
// the API layer can surface it as a 400 instead of a server fault.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a caller-input error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TaxEngine is the external tax-calculation provider. Implementations may
// fail for any reason (network, configuration, bad address); the service
// recovers by falling back to the geographic rate table.
type TaxEngine interface {
	CalculateTax(ctx context.Context, amountCents int64, reference, customerID string, address *domain.TaxProfile) (int64, error)
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Service provides the business logic for fee and tax calculation.
type Service struct {
	repo      store.Repository
	schedule  *fees.Schedule
	taxEngine TaxEngine
	publisher EventPublisher
}

// NewService creates a new fee service. taxEngine and publisher may be nil
// when the corresponding integration is not configured.
func NewService(repo store.Repository, schedule *fees.Schedule, taxEngine TaxEngine, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		schedule:  schedule,
		taxEngine: taxEngine,
		publisher: publisher,
	}
}

// subscriptionTier loads the user's tier, defaulting to free when the user
// row is missing. Only genuine store failures propagate.
func (s *Service) subscriptionTier(ctx context.Context, userID uuid.UUID) (string, error) {
	tier, err := s.repo.GetSubscriptionTier(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.TierFree, nil
		}
		return "", fmt.Errorf("failed to load subscription tier: %w", err)
	}
	return tier, nil
}

func newCalculation(amount, fee, tax, total, feeRate int64) *domain.FeeCalculation {
	return &domain.FeeCalculation{
		Amount:  amount,
		Fee:     fee,
		Tax:     tax,
		Total:   total,
		FeeRate: feeRate,
		Breakdown: domain.FeeBreakdown{
			Subtotal: domain.FormatCents(amount),
			Fee:      domain.FormatCents(fee),
			Tax:      domain.FormatCents(tax),
			Total:    domain.FormatCents(total),
		},
	}
}

// CalculateTradingFee computes the fee for a trade. Options contracts are
// charged a fixed per-contract fee; stock and crypto trades pay a
// percentage fee discounted by the user's subscription tier. Trading fees
// are not taxed.
func (s *Service) CalculateTradingFee(ctx context.Context, userID uuid.UUID, amountCents int64, assetType domain.AssetType, quantity int64) (*domain.FeeCalculation, error) {
	if amountCents < 0 {
		return nil, validationErrorf("amount must not be negative")
	}
	if !assetType.Valid() {
		return nil, validationErrorf("unknown asset type %q", assetType)
	}

	if assetType == domain.AssetTypeOptions {
		if quantity <= 0 {
			return nil, validationErrorf("options trades require a contract quantity")
		}
		fee := s.schedule.Trading.Options.Cents * quantity
		return newCalculation(amountCents, fee, 0, amountCents+fee, 0), nil
	}

	tier, err := s.subscriptionTier(ctx, userID)
	if err != nil {
		return nil, err
	}
	discount := s.schedule.DiscountFor(tier)

	rule := s.schedule.Trading.Stock
	if assetType == domain.AssetTypeCrypto {
		rule = s.schedule.Trading.Crypto
	}

	fee := fees.CalculateFee(amountCents, rule, discount.TradingFeeBps)
	return newCalculation(amountCents, fee, 0, amountCents+fee, rule.Bps), nil
}

// CalculateWithdrawalFee computes the fee for a withdrawal. Wire transfers
// are split into domestic and international rates; the user's tier
// discount applies to percentage-based methods.
func (s *Service) CalculateWithdrawalFee(ctx context.Context, userID uuid.UUID, amountCents int64, method domain.WithdrawalMethod, wireDomestic bool) (*domain.FeeCalculation, error) {
	if amountCents < 0 {
		return nil, validationErrorf("amount must not be negative")
	}

	rule, ok := s.schedule.WithdrawalRule(string(method), wireDomestic)
	if !ok {
		return nil, validationErrorf("unknown withdrawal method %q", method)
	}

	tier, err := s.subscriptionTier(ctx, userID)
	if err != nil {
		return nil, err
	}
	discount := s.schedule.DiscountFor(tier)

	fee := fees.CalculateFee(amountCents, rule, discount.WithdrawalFeeBps)
	return newCalculation(amountCents, fee, 0, amountCents+fee, rule.Bps), nil
}

// CalculateDepositFee computes the fee for a deposit. No subscription
// discount applies; credit-card deposits carry a flat surcharge on top of
// the percentage fee.
func (s *Service) CalculateDepositFee(ctx context.Context, userID uuid.UUID, amountCents int64, method domain.DepositMethod) (*domain.FeeCalculation, error) {
	if amountCents < 0 {
		return nil, validationErrorf("amount must not be negative")
	}

	rule, ok := s.schedule.DepositRule(string(method))
	if !ok {
		return nil, validationErrorf("unknown deposit method %q", method)
	}

	fee := fees.CalculateFee(amountCents, rule, 0)
	return newCalculation(amountCents, fee, 0, amountCents+fee, rule.Bps), nil
}

// CalculatePayoutFee computes the fee for a creator payout. Unlike the
// other operations the fee is deducted from the disbursed amount, so the
// total is amount minus fee.
func (s *Service) CalculatePayoutFee(ctx context.Context, userID uuid.UUID, amountCents int64, speed domain.PayoutSpeed) (*domain.FeeCalculation, error) {
	if amountCents < 0 {
		return nil, validationErrorf("amount must not be negative")
	}

	rule, ok := s.schedule.PayoutRule(string(speed))
	if !ok {
		return nil, validationErrorf("unknown payout speed %q", speed)
	}

	fee := fees.CalculateFee(amountCents, rule, 0)
	return newCalculation(amountCents, fee, 0, amountCents-fee, rule.Bps), nil
}

// CalculateTaxWithStripe calculates tax for an amount using the external
// tax engine. Any engine failure is recovered locally via the geographic
// rate table; a user without a tax profile is simply untaxed. The returned
// error is only ever a store failure on the initial profile load path.
func (s *Service) CalculateTaxWithStripe(ctx context.Context, userID uuid.UUID, amountCents int64, productType string) (int64, error) {
	if !s.schedule.Tax.Enabled || !s.schedule.Tax.AutomaticTax {
		return 0, nil
	}
	if s.taxEngine == nil {
		return s.fallbackTax(ctx, userID, amountCents), nil
	}

	profile, err := s.repo.GetTaxProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrTaxProfileNotFound) {
		log.Printf("level=warn component=app msg=\"tax profile load failed, using fallback\" user_id=%s err=%v", userID, err)
	}

	reference := fmt.Sprintf("%s-%s", productType, userID)
	customerID := ""
	if profile != nil {
		customerID = profile.StripeCustomerID
	}

	tax, engineErr := s.taxEngine.CalculateTax(ctx, amountCents, reference, customerID, profile)
	if engineErr == nil {
		return tax, nil
	}

	// Recovered failure: the provider being down must not fail the request.
	log.Printf("level=error component=app msg=\"external tax calculation failed, falling back to geo table\" user_id=%s err=%v", userID, engineErr)

	if profile == nil {
		return 0, nil
	}
	return s.schedule.CalculateFallbackTax(amountCents, profile.Country, profile.State), nil
}

func (s *Service) fallbackTax(ctx context.Context, userID uuid.UUID, amountCents int64) int64 {
	profile, err := s.repo.GetTaxProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrTaxProfileNotFound) {
			log.Printf("level=warn component=app msg=\"tax profile load failed\" user_id=%s err=%v", userID, err)
		}
		return 0
	}
	return s.schedule.CalculateFallbackTax(amountCents, profile.Country, profile.State)
}

// buildFeeRecord assembles a fee transaction with the tier and tax-address
// snapshot taken at write time. The fee and tax were computed earlier from
// context that may have since changed; the snapshot records what was true
// when the transaction happened.
func (s *Service) buildFeeRecord(ctx context.Context, userID uuid.UUID, transactionType, subtype string, amountCents, feeCents, taxCents int64, extra map[string]interface{}) (*domain.FeeTransaction, error) {
	tier, err := s.subscriptionTier(ctx, userID)
	if err != nil {
		return nil, err
	}

	var country, state interface{}
	if profile, err := s.repo.GetTaxProfile(ctx, userID); err == nil {
		country = profile.Country
		if profile.State != "" {
			state = profile.State
		}
	} else if !errors.Is(err, store.ErrTaxProfileNotFound) {
		return nil, fmt.Errorf("failed to load tax profile: %w", err)
	}

	metadata := map[string]interface{}{
		"subtype":          subtype,
		"subscriptionTier": tier,
		"country":          country,
		"state":            state,
		"status":           "completed",
	}
	for k, v := range extra {
		metadata[k] = v
	}

	return &domain.FeeTransaction{
		UserID:          userID,
		TransactionType: transactionType,
		Amount:          amountCents,
		Fee:             feeCents,
		Tax:             taxCents,
		Total:           amountCents + feeCents + taxCents,
		Currency:        "USD",
		Metadata:        metadata,
	}, nil
}

// RecordFeeTransaction persists one fee audit record with the user's
// current tier and tax address snapshotted into its metadata.
func (s *Service) RecordFeeTransaction(ctx context.Context, userID uuid.UUID, transactionType, subtype string, amountCents, feeCents, taxCents int64, extra map[string]interface{}) (*domain.FeeTransaction, error) {
	record, err := s.buildFeeRecord(ctx, userID, transactionType, subtype, amountCents, feeCents, taxCents, extra)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateFeeTransaction(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record fee transaction: %w", err)
	}
	return record, nil
}

// methodCode normalizes a method string to the uppercase snake-case code
// stored on withdrawal and payout rows, e.g. "wire-transfer" -> "WIRE_TRANSFER".
func methodCode(method string) string {
	return strings.ToUpper(strings.ReplaceAll(method, "-", "_"))
}

// CreateWithdrawal computes the withdrawal fee, persists the PENDING
// withdrawal together with its fee transaction, and publishes a
// withdrawal-created event. The net amount is the gross amount minus fee
// and tax.
func (s *Service) CreateWithdrawal(ctx context.Context, userID uuid.UUID, amountCents int64, method, speed, destination string, metadata map[string]interface{}) (*domain.Withdrawal, error) {
	if destination == "" {
		return nil, validationErrorf("destination is required")
	}

	calc, err := s.CalculateWithdrawalFee(ctx, userID, amountCents, domain.WithdrawalMethod(method), method == string(domain.WithdrawalMethodWire))
	if err != nil {
		return nil, err
	}

	wMetadata := map[string]interface{}{
		"speed":    speed,
		"currency": "USD",
		"tax":      calc.Tax,
	}
	for k, v := range metadata {
		wMetadata[k] = v
	}

	withdrawal := &domain.Withdrawal{
		UserID:      userID,
		Amount:      amountCents,
		Fee:         calc.Fee,
		Total:       amountCents - calc.Fee - calc.Tax,
		Method:      methodCode(method),
		Destination: destination,
		Status:      domain.StatusPending,
		Metadata:    wMetadata,
	}

	feeRecord, err := s.buildFeeRecord(ctx, userID, domain.TransactionTypeWithdrawal, method, amountCents, calc.Fee, calc.Tax, metadata)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithdrawalWithFee(ctx, withdrawal, feeRecord); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	s.publishEvent(ctx, "fee.withdrawal_created", transferEvent{
		UserID:      userID.String(),
		RecordID:    withdrawal.ID.String(),
		Amount:      withdrawal.Amount,
		Fee:         withdrawal.Fee,
		Total:       withdrawal.Total,
		Method:      withdrawal.Method,
		Speed:       speed,
		Destination: destination,
		Status:      withdrawal.Status,
		Timestamp:   time.Now().UTC(),
	})

	return withdrawal, nil
}

// CreatePayout computes the payout fee by speed, persists the PENDING
// payout together with its fee transaction, and publishes a payout-created
// event. Payouts are net-of-fee disbursements.
func (s *Service) CreatePayout(ctx context.Context, userID uuid.UUID, amountCents int64, method, speed, destination string, metadata map[string]interface{}) (*domain.Payout, error) {
	if destination == "" {
		return nil, validationErrorf("destination is required")
	}

	calc, err := s.CalculatePayoutFee(ctx, userID, amountCents, domain.PayoutSpeed(speed))
	if err != nil {
		return nil, err
	}

	pMetadata := map[string]interface{}{
		"speed":    speed,
		"currency": "USD",
		"tax":      calc.Tax,
	}
	for k, v := range metadata {
		pMetadata[k] = v
	}

	payout := &domain.Payout{
		UserID:      userID,
		Amount:      amountCents,
		Fee:         calc.Fee,
		Total:       amountCents - calc.Fee - calc.Tax,
		Method:      methodCode(method),
		Destination: destination,
		Status:      domain.StatusPending,
		Metadata:    pMetadata,
	}

	feeRecord, err := s.buildFeeRecord(ctx, userID, domain.TransactionTypePayout, method, amountCents, calc.Fee, calc.Tax, metadata)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreatePayoutWithFee(ctx, payout, feeRecord); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	s.publishEvent(ctx, "fee.payout_created", transferEvent{
		UserID:      userID.String(),
		RecordID:    payout.ID.String(),
		Amount:      payout.Amount,
		Fee:         payout.Fee,
		Total:       payout.Total,
		Method:      payout.Method,
		Speed:       speed,
		Destination: destination,
		Status:      payout.Status,
		Timestamp:   time.Now().UTC(),
	})

	return payout, nil
}

// GetUserFeeSummary aggregates the user's fee transactions over an
// optional inclusive date range, newest first. A range with no matching
// transactions yields an empty summary, not an error.
func (s *Service) GetUserFeeSummary(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.FeeSummary, error) {
	transactions, err := s.repo.ListFeeTransactions(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee transactions: %w", err)
	}

	summary := &domain.FeeSummary{
		ByType:       map[string]domain.FeeTypeSummary{},
		Transactions: make([]domain.FeeSummaryEntry, 0, len(transactions)),
	}

	for _, t := range transactions {
		summary.TotalFees += t.Fee
		summary.TotalTaxes += t.Tax

		byType := summary.ByType[t.TransactionType]
		byType.Count++
		byType.Fees += t.Fee
		byType.Taxes += t.Tax
		summary.ByType[t.TransactionType] = byType

		summary.Transactions = append(summary.Transactions, domain.FeeSummaryEntry{
			ID:      t.ID,
			Type:    t.TransactionType,
			Subtype: t.Subtype(),
			Amount:  domain.FormatCents(t.Amount),
			Fee:     domain.FormatCents(t.Fee),
			Tax:     domain.FormatCents(t.Tax),
			Total:   domain.FormatCents(t.Total),
			Date:    t.CreatedAt,
		})
	}

	for transactionType, byType := range summary.ByType {
		byType.FeesFormatted = domain.FormatCents(byType.Fees)
		byType.TaxesFormatted = domain.FormatCents(byType.Taxes)
		summary.ByType[transactionType] = byType
	}

	summary.TotalFeesFormatted = domain.FormatCents(summary.TotalFees)
	summary.TotalTaxesFormatted = domain.FormatCents(summary.TotalTaxes)
	return summary, nil
}

type transferEvent struct {
	UserID      string    `json:"user_id"`
	RecordID    string    `json:"record_id"`
	Amount      int64     `json:"amount"`
	Fee         int64     `json:"fee"`
	Total       int64     `json:"total"`
	Method      string    `json:"method"`
	Speed       string    `json:"speed"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, EventsExchange, routingKey, payload); err != nil {
		log.Printf("level=warn component=app msg=\"failed to publish event\" routing_key=%s err=%v", routingKey, err)
	}
}
