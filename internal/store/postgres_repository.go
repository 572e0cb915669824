/**
 * @description
 * PostgreSQL implementation of the fee-service Repository, built on a
 * pgxpool connection pool. Queries are raw SQL; JSONB metadata columns are
 * marshalled explicitly so the stored shape is deterministic.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kairo/fee-service/internal/domain"
)

// PostgresRepository handles database operations for the fee-service.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetSubscriptionTier returns the user's subscription plan, defaulting to
// free when the column is null.
func (r *PostgresRepository) GetSubscriptionTier(ctx context.Context, userID uuid.UUID) (string, error) {
	var tier *string
	err := r.db.QueryRow(ctx,
		"SELECT subscription_plan FROM users WHERE id = $1", userID).Scan(&tier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if tier == nil || *tier == "" {
		return domain.TierFree, nil
	}
	return *tier, nil
}

// GetTaxProfile returns the user's tax information row.
func (r *PostgresRepository) GetTaxProfile(ctx context.Context, userID uuid.UUID) (*domain.TaxProfile, error) {
	var (
		profile    domain.TaxProfile
		state      *string
		postalCode *string
		city       *string
		address    *string
		customerID *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT t.user_id, t.country, t.state, t.zip_code, t.city, t.address, u.stripe_customer_id
		FROM tax_information t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1
	`, userID).Scan(&profile.UserID, &profile.Country, &state, &postalCode, &city, &address, &customerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTaxProfileNotFound
		}
		return nil, err
	}

	if state != nil {
		profile.State = *state
	}
	if postalCode != nil {
		profile.PostalCode = *postalCode
	}
	if city != nil {
		profile.City = *city
	}
	if address != nil {
		profile.Address = *address
	}
	if customerID != nil {
		profile.StripeCustomerID = *customerID
	}
	return &profile, nil
}

const insertFeeTransactionQuery = `
	INSERT INTO fee_transactions (user_id, transaction_type, amount, fee, tax, total, currency, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at
`

// CreateFeeTransaction inserts one fee audit record.
func (r *PostgresRepository) CreateFeeTransaction(ctx context.Context, ft *domain.FeeTransaction) error {
	metadata, err := json.Marshal(ft.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal fee transaction metadata: %w", err)
	}

	return r.db.QueryRow(ctx, insertFeeTransactionQuery,
		ft.UserID, ft.TransactionType, ft.Amount, ft.Fee, ft.Tax, ft.Total, ft.Currency, metadata,
	).Scan(&ft.ID, &ft.CreatedAt)
}

// CreateWithdrawalWithFee inserts the withdrawal and its fee transaction in
// one database transaction so a failure between the writes cannot leave an
// orphaned record. The withdrawal id is linked into the fee metadata.
func (r *PostgresRepository) CreateWithdrawalWithFee(ctx context.Context, w *domain.Withdrawal, fee *domain.FeeTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	wMetadata, err := json.Marshal(w.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal withdrawal metadata: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, fee, total, method, destination, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, w.UserID, w.Amount, w.Fee, w.Total, w.Method, w.Destination, w.Status, wMetadata).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return err
	}

	if fee.Metadata == nil {
		fee.Metadata = map[string]interface{}{}
	}
	fee.Metadata["withdrawalId"] = w.ID.String()

	feeMetadata, err := json.Marshal(fee.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal fee transaction metadata: %w", err)
	}

	err = tx.QueryRow(ctx, insertFeeTransactionQuery,
		fee.UserID, fee.TransactionType, fee.Amount, fee.Fee, fee.Tax, fee.Total, fee.Currency, feeMetadata,
	).Scan(&fee.ID, &fee.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreatePayoutWithFee inserts the payout and its fee transaction in one
// database transaction.
func (r *PostgresRepository) CreatePayoutWithFee(ctx context.Context, p *domain.Payout, fee *domain.FeeTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	pMetadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payout metadata: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO payouts (user_id, amount, fee, total, method, destination, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.UserID, p.Amount, p.Fee, p.Total, p.Method, p.Destination, p.Status, pMetadata).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	if fee.Metadata == nil {
		fee.Metadata = map[string]interface{}{}
	}
	fee.Metadata["payoutId"] = p.ID.String()

	feeMetadata, err := json.Marshal(fee.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal fee transaction metadata: %w", err)
	}

	err = tx.QueryRow(ctx, insertFeeTransactionQuery,
		fee.UserID, fee.TransactionType, fee.Amount, fee.Fee, fee.Tax, fee.Total, fee.Currency, feeMetadata,
	).Scan(&fee.ID, &fee.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListFeeTransactions returns the user's fee transactions newest first.
// The date bounds are inclusive; nil means unbounded.
func (r *PostgresRepository) ListFeeTransactions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]domain.FeeTransaction, error) {
	query := `
		SELECT id, user_id, transaction_type, amount, fee, tax, total, currency, metadata, created_at
		FROM fee_transactions
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.FeeTransaction
	for rows.Next() {
		var (
			ft       domain.FeeTransaction
			metadata []byte
		)
		if err := rows.Scan(
			&ft.ID,
			&ft.UserID,
			&ft.TransactionType,
			&ft.Amount,
			&ft.Fee,
			&ft.Tax,
			&ft.Total,
			&ft.Currency,
			&metadata,
			&ft.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ft.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fee transaction metadata: %w", err)
			}
		}
		transactions = append(transactions, ft)
	}

	return transactions, rows.Err()
}
