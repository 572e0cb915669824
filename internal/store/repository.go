/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the fee-service needs. The interface decouples the business logic
 * from PostgreSQL so the app layer can be tested against in-memory fakes.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kairo/fee-service/internal/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaxProfileNotFound = errors.New("tax profile not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// GetSubscriptionTier returns the user's current subscription plan.
	GetSubscriptionTier(ctx context.Context, userID uuid.UUID) (string, error)

	// GetTaxProfile returns the user's tax address and billing customer
	// reference. Returns ErrTaxProfileNotFound when the user has none.
	GetTaxProfile(ctx context.Context, userID uuid.UUID) (*domain.TaxProfile, error)

	// CreateFeeTransaction inserts one fee audit record.
	CreateFeeTransaction(ctx context.Context, tx *domain.FeeTransaction) error

	// CreateWithdrawalWithFee inserts the withdrawal row and its linked
	// fee transaction atomically. The withdrawal id is linked into the fee
	// transaction's metadata before the fee row is written.
	CreateWithdrawalWithFee(ctx context.Context, w *domain.Withdrawal, fee *domain.FeeTransaction) error

	// CreatePayoutWithFee mirrors CreateWithdrawalWithFee for payouts.
	CreatePayoutWithFee(ctx context.Context, p *domain.Payout, fee *domain.FeeTransaction) error

	// ListFeeTransactions returns the user's fee transactions newest
	// first, filtered by the optional inclusive date bounds.
	ListFeeTransactions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]domain.FeeTransaction, error)
}
