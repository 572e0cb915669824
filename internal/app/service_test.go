package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kairo/fee-service/internal/domain"
	"github.com/kairo/fee-service/internal/fees"
	"github.com/kairo/fee-service/internal/store"
)

type fakeRepository struct {
	tiers       map[uuid.UUID]string
	taxProfiles map[uuid.UUID]*domain.TaxProfile
	tierErr     error

	feeTransactions []*domain.FeeTransaction
	withdrawals     []*domain.Withdrawal
	payouts         []*domain.Payout
	listResult      []domain.FeeTransaction
	listErr         error
	createErr       error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		tiers:       map[uuid.UUID]string{},
		taxProfiles: map[uuid.UUID]*domain.TaxProfile{},
	}
}

func (f *fakeRepository) GetSubscriptionTier(ctx context.Context, userID uuid.UUID) (string, error) {
	if f.tierErr != nil {
		return "", f.tierErr
	}
	tier, ok := f.tiers[userID]
	if !ok {
		return "", store.ErrUserNotFound
	}
	return tier, nil
}

func (f *fakeRepository) GetTaxProfile(ctx context.Context, userID uuid.UUID) (*domain.TaxProfile, error) {
	profile, ok := f.taxProfiles[userID]
	if !ok {
		return nil, store.ErrTaxProfileNotFound
	}
	return profile, nil
}

func (f *fakeRepository) CreateFeeTransaction(ctx context.Context, ft *domain.FeeTransaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	ft.ID = uuid.New()
	ft.CreatedAt = time.Now().UTC()
	f.feeTransactions = append(f.feeTransactions, ft)
	return nil
}

func (f *fakeRepository) CreateWithdrawalWithFee(ctx context.Context, w *domain.Withdrawal, fee *domain.FeeTransaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	w.ID = uuid.New()
	w.CreatedAt = time.Now().UTC()
	if fee.Metadata == nil {
		fee.Metadata = map[string]interface{}{}
	}
	fee.Metadata["withdrawalId"] = w.ID.String()
	fee.ID = uuid.New()
	f.withdrawals = append(f.withdrawals, w)
	f.feeTransactions = append(f.feeTransactions, fee)
	return nil
}

func (f *fakeRepository) CreatePayoutWithFee(ctx context.Context, p *domain.Payout, fee *domain.FeeTransaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	if fee.Metadata == nil {
		fee.Metadata = map[string]interface{}{}
	}
	fee.Metadata["payoutId"] = p.ID.String()
	fee.ID = uuid.New()
	f.payouts = append(f.payouts, p)
	f.feeTransactions = append(f.feeTransactions, fee)
	return nil
}

func (f *fakeRepository) ListFeeTransactions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]domain.FeeTransaction, error) {
	return f.listResult, f.listErr
}

type fakeTaxEngine struct {
	tax  int64
	err  error
	call int
}

func (f *fakeTaxEngine) CalculateTax(ctx context.Context, amountCents int64, reference, customerID string, profile *domain.TaxProfile) (int64, error) {
	f.call++
	if f.err != nil {
		return 0, f.err
	}
	return f.tax, nil
}

type fakePublisher struct {
	keys []string
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	f.keys = append(f.keys, routingKey)
	return nil
}

func newTestService(repo *fakeRepository, engine TaxEngine, publisher EventPublisher) *Service {
	return NewService(repo, fees.DefaultSchedule(), engine, publisher)
}

func TestCalculateTradingFee(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		tier      string
		amount    int64
		assetType domain.AssetType
		quantity  int64
		wantFee   int64
		wantTotal int64
		wantErr   bool
	}{
		{
			name:      "stock fee clamped to minimum",
			tier:      "free",
			amount:    10000,
			assetType: domain.AssetTypeStock,
			wantFee:   100,
			wantTotal: 10100,
		},
		{
			name:      "stock fee within bounds",
			tier:      "free",
			amount:    1000000,
			assetType: domain.AssetTypeStock,
			wantFee:   2500,
			wantTotal: 1002500,
		},
		{
			name:      "pro tier discounts the stock fee once",
			tier:      "pro",
			amount:    1000000, // raw 2500, 20% discount -> 2000
			assetType: domain.AssetTypeStock,
			wantFee:   2000,
			wantTotal: 1002000,
		},
		{
			name:      "enterprise trading is free above the minimum",
			tier:      "enterprise",
			amount:    1000000, // full discount -> 0, clamped to min 100
			assetType: domain.AssetTypeStock,
			wantFee:   100,
			wantTotal: 1000100,
		},
		{
			name:      "crypto fee with minimum",
			tier:      "free",
			amount:    10000,
			assetType: domain.AssetTypeCrypto,
			wantFee:   200,
			wantTotal: 10200,
		},
		{
			name:      "options charge per contract",
			tier:      "free",
			amount:    50000,
			assetType: domain.AssetTypeOptions,
			quantity:  10,
			wantFee:   650,
			wantTotal: 50650,
		},
		{
			name:      "options without quantity rejected",
			tier:      "free",
			amount:    50000,
			assetType: domain.AssetTypeOptions,
			wantErr:   true,
		},
		{
			name:      "unknown asset type rejected",
			tier:      "free",
			amount:    50000,
			assetType: domain.AssetType("bonds"),
			wantErr:   true,
		},
		{
			name:      "negative amount rejected",
			tier:      "free",
			amount:    -1,
			assetType: domain.AssetTypeStock,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			repo.tiers[userID] = tt.tier
			service := newTestService(repo, nil, nil)

			calc, err := service.CalculateTradingFee(context.Background(), userID, tt.amount, tt.assetType, tt.quantity)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsValidationError(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calc.Fee != tt.wantFee {
				t.Fatalf("expected fee %d, got %d", tt.wantFee, calc.Fee)
			}
			if calc.Total != tt.wantTotal {
				t.Fatalf("expected total %d, got %d", tt.wantTotal, calc.Total)
			}
			if calc.Tax != 0 {
				t.Fatalf("trading fees must not be taxed, got %d", calc.Tax)
			}
		})
	}
}

func TestCalculateTradingFeeUnknownUserDefaultsToFree(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil, nil)

	calc, err := service.CalculateTradingFee(context.Background(), uuid.New(), 1000000, domain.AssetTypeStock, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.Fee != 2500 {
		t.Fatalf("expected undiscounted fee 2500, got %d", calc.Fee)
	}
}

func TestCalculateWithdrawalFee(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		tier         string
		amount       int64
		method       domain.WithdrawalMethod
		wireDomestic bool
		wantFee      int64
	}{
		{name: "ach is free", tier: "free", amount: 100000, method: domain.WithdrawalMethodACH, wantFee: 0},
		{name: "domestic wire", tier: "free", amount: 100000, method: domain.WithdrawalMethodWire, wireDomestic: true, wantFee: 2500},
		{name: "international wire", tier: "free", amount: 100000, method: domain.WithdrawalMethodWire, wantFee: 4500},
		{
			// $1000 crypto withdrawal for a pro user: raw 1000, 50% discount
			// -> 500, clamped at min 500.
			name: "pro crypto discount lands on the minimum", tier: "pro",
			amount: 100000, method: domain.WithdrawalMethodCrypto, wantFee: 500,
		},
		{name: "elite crypto still pays the minimum", tier: "elite", amount: 100000, method: domain.WithdrawalMethodCrypto, wantFee: 500},
		{name: "instant percentage with minimum", tier: "free", amount: 10000, method: domain.WithdrawalMethodInstant, wantFee: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			repo.tiers[userID] = tt.tier
			service := newTestService(repo, nil, nil)

			calc, err := service.CalculateWithdrawalFee(context.Background(), userID, tt.amount, tt.method, tt.wireDomestic)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calc.Fee != tt.wantFee {
				t.Fatalf("expected fee %d, got %d", tt.wantFee, calc.Fee)
			}
			if calc.Total != tt.amount+calc.Fee {
				t.Fatalf("withdrawal total must be amount+fee, got %d", calc.Total)
			}
		})
	}
}

func TestCalculateDepositFee(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil, nil)
	userID := uuid.New()

	// Credit card: 2.9% of $100 plus the $0.30 surcharge.
	calc, err := service.CalculateDepositFee(context.Background(), userID, 10000, domain.DepositMethodCreditCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.Fee != 320 {
		t.Fatalf("expected fee 320, got %d", calc.Fee)
	}
	if calc.Total != 10320 {
		t.Fatalf("expected total 10320, got %d", calc.Total)
	}

	if _, err := service.CalculateDepositFee(context.Background(), userID, 10000, domain.DepositMethod("check")); !IsValidationError(err) {
		t.Fatalf("expected validation error for unknown method, got %v", err)
	}
}

func TestCalculatePayoutFeeDeductsFromAmount(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil, nil)
	userID := uuid.New()

	// $100 instant payout: raw fee 150 clamped up to 300; net 9700.
	calc, err := service.CalculatePayoutFee(context.Background(), userID, 10000, domain.PayoutSpeedInstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.Fee != 300 {
		t.Fatalf("expected fee 300, got %d", calc.Fee)
	}
	if calc.Total != 9700 {
		t.Fatalf("expected net total 9700, got %d", calc.Total)
	}
	if calc.Breakdown.Total != "97.00" {
		t.Fatalf("expected formatted total 97.00, got %s", calc.Breakdown.Total)
	}

	standard, err := service.CalculatePayoutFee(context.Background(), userID, 10000, domain.PayoutSpeedStandard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if standard.Fee != 0 || standard.Total != 10000 {
		t.Fatalf("expected free standard payout, got fee=%d total=%d", standard.Fee, standard.Total)
	}
}

func TestCalculateTaxWithStripe(t *testing.T) {
	userID := uuid.New()

	t.Run("disabled automatic tax returns zero", func(t *testing.T) {
		repo := newFakeRepository()
		engine := &fakeTaxEngine{tax: 999}
		service := newTestService(repo, engine, nil)
		service.schedule.Tax.AutomaticTax = false

		tax, err := service.CalculateTaxWithStripe(context.Background(), userID, 100000, "subscription")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tax != 0 {
			t.Fatalf("expected zero tax, got %d", tax)
		}
		if engine.call != 0 {
			t.Fatal("engine must not be called when automatic tax is off")
		}
	})

	t.Run("engine result returned when it succeeds", func(t *testing.T) {
		repo := newFakeRepository()
		repo.taxProfiles[userID] = &domain.TaxProfile{UserID: userID, Country: "DE"}
		engine := &fakeTaxEngine{tax: 1234}
		service := newTestService(repo, engine, nil)

		tax, err := service.CalculateTaxWithStripe(context.Background(), userID, 100000, "subscription")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tax != 1234 {
			t.Fatalf("expected engine tax 1234, got %d", tax)
		}
	})

	t.Run("engine failure falls back to geo table", func(t *testing.T) {
		repo := newFakeRepository()
		repo.taxProfiles[userID] = &domain.TaxProfile{UserID: userID, Country: "DE"}
		engine := &fakeTaxEngine{err: errors.New("stripe unavailable")}
		service := newTestService(repo, engine, nil)

		tax, err := service.CalculateTaxWithStripe(context.Background(), userID, 100000, "subscription")
		if err != nil {
			t.Fatalf("engine failure must be recovered, got %v", err)
		}
		if tax != 19000 { // 19% German VAT
			t.Fatalf("expected fallback tax 19000, got %d", tax)
		}
	})

	t.Run("engine failure without profile yields zero", func(t *testing.T) {
		repo := newFakeRepository()
		engine := &fakeTaxEngine{err: errors.New("stripe unavailable")}
		service := newTestService(repo, engine, nil)

		tax, err := service.CalculateTaxWithStripe(context.Background(), userID, 100000, "subscription")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tax != 0 {
			t.Fatalf("expected zero tax without profile, got %d", tax)
		}
	})

	t.Run("nil engine uses fallback directly", func(t *testing.T) {
		repo := newFakeRepository()
		repo.taxProfiles[userID] = &domain.TaxProfile{UserID: userID, Country: "CA", State: "ON"}
		service := newTestService(repo, nil, nil)

		tax, err := service.CalculateTaxWithStripe(context.Background(), userID, 100000, "subscription")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tax != 13000 {
			t.Fatalf("expected Ontario HST 13000, got %d", tax)
		}
	})
}

func TestRecordFeeTransactionSnapshotsContext(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepository()
	repo.tiers[userID] = "elite"
	repo.taxProfiles[userID] = &domain.TaxProfile{UserID: userID, Country: "US", State: "NY"}
	service := newTestService(repo, nil, nil)

	record, err := service.RecordFeeTransaction(context.Background(), userID, domain.TransactionTypeTrading, "stock", 100000, 125, 0, map[string]interface{}{"orderId": "ord_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Total != 100125 {
		t.Fatalf("expected total 100125, got %d", record.Total)
	}
	if record.Currency != "USD" {
		t.Fatalf("expected USD, got %s", record.Currency)
	}
	if record.Metadata["subscriptionTier"] != "elite" {
		t.Fatalf("expected tier snapshot, got %v", record.Metadata["subscriptionTier"])
	}
	if record.Metadata["country"] != "US" || record.Metadata["state"] != "NY" {
		t.Fatalf("expected address snapshot, got %v/%v", record.Metadata["country"], record.Metadata["state"])
	}
	if record.Metadata["orderId"] != "ord_1" {
		t.Fatal("expected caller metadata to be preserved")
	}
	if len(repo.feeTransactions) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(repo.feeTransactions))
	}
}

func TestCreateWithdrawal(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepository()
	repo.tiers[userID] = "pro"
	publisher := &fakePublisher{}
	service := newTestService(repo, nil, publisher)

	// $1000 crypto withdrawal for a pro user: fee 500 after 50% discount.
	withdrawal, err := service.CreateWithdrawal(context.Background(), userID, 100000, "crypto", "standard", "bc1qaddress", map[string]interface{}{"note": "rent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if withdrawal.Fee != 500 {
		t.Fatalf("expected fee 500, got %d", withdrawal.Fee)
	}
	if withdrawal.Total != 99500 {
		t.Fatalf("expected net 99500, got %d", withdrawal.Total)
	}
	if withdrawal.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", withdrawal.Status)
	}
	if withdrawal.Method != "CRYPTO" {
		t.Fatalf("expected normalized method CRYPTO, got %s", withdrawal.Method)
	}
	if withdrawal.Metadata["speed"] != "standard" || withdrawal.Metadata["note"] != "rent" {
		t.Fatalf("unexpected metadata: %v", withdrawal.Metadata)
	}

	if len(repo.feeTransactions) != 1 {
		t.Fatalf("expected linked fee transaction, got %d", len(repo.feeTransactions))
	}
	fee := repo.feeTransactions[0]
	if fee.TransactionType != domain.TransactionTypeWithdrawal {
		t.Fatalf("expected withdrawal fee record, got %s", fee.TransactionType)
	}
	if fee.Metadata["withdrawalId"] != withdrawal.ID.String() {
		t.Fatal("expected fee record to link the withdrawal id")
	}
	if fee.Metadata["subtype"] != "crypto" {
		t.Fatalf("expected subtype crypto, got %v", fee.Metadata["subtype"])
	}

	if len(publisher.keys) != 1 || publisher.keys[0] != "fee.withdrawal_created" {
		t.Fatalf("expected withdrawal event, got %v", publisher.keys)
	}
}

func TestCreateWithdrawalWireAlwaysUsesDomesticRate(t *testing.T) {
	// The wire flag is derived from the method itself, so this path can
	// only ever reach the domestic rate. Kept intentionally; see DESIGN.md.
	userID := uuid.New()
	repo := newFakeRepository()
	repo.tiers[userID] = "free"
	service := newTestService(repo, nil, nil)

	withdrawal, err := service.CreateWithdrawal(context.Background(), userID, 100000, "wire", "standard", "acct 123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withdrawal.Fee != 2500 {
		t.Fatalf("expected domestic wire fee 2500, got %d", withdrawal.Fee)
	}
}

func TestCreateWithdrawalValidation(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil, nil)

	if _, err := service.CreateWithdrawal(context.Background(), uuid.New(), 100000, "crypto", "standard", "", nil); !IsValidationError(err) {
		t.Fatalf("expected validation error for empty destination, got %v", err)
	}
	if _, err := service.CreateWithdrawal(context.Background(), uuid.New(), 100000, "carrier-pigeon", "standard", "dest", nil); !IsValidationError(err) {
		t.Fatalf("expected validation error for unknown method, got %v", err)
	}
	if len(repo.withdrawals) != 0 || len(repo.feeTransactions) != 0 {
		t.Fatal("validation failures must not persist anything")
	}
}

func TestCreatePayout(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepository()
	publisher := &fakePublisher{}
	service := newTestService(repo, nil, publisher)

	payout, err := service.CreatePayout(context.Background(), userID, 10000, "ach", "instant", "acct_99", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payout.Fee != 300 {
		t.Fatalf("expected fee 300, got %d", payout.Fee)
	}
	if payout.Total != 9700 {
		t.Fatalf("expected net 9700, got %d", payout.Total)
	}
	if payout.Method != "ACH" {
		t.Fatalf("expected normalized method ACH, got %s", payout.Method)
	}

	if len(repo.feeTransactions) != 1 {
		t.Fatalf("expected linked fee transaction, got %d", len(repo.feeTransactions))
	}
	if repo.feeTransactions[0].Metadata["payoutId"] != payout.ID.String() {
		t.Fatal("expected fee record to link the payout id")
	}
	if len(publisher.keys) != 1 || publisher.keys[0] != "fee.payout_created" {
		t.Fatalf("expected payout event, got %v", publisher.keys)
	}
}

func TestGetUserFeeSummary(t *testing.T) {
	userID := uuid.New()

	t.Run("empty range yields empty summary", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo, nil, nil)

		summary, err := service.GetUserFeeSummary(context.Background(), userID, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.TotalFees != 0 || summary.TotalTaxes != 0 {
			t.Fatalf("expected zero totals, got %d/%d", summary.TotalFees, summary.TotalTaxes)
		}
		if len(summary.Transactions) != 0 || len(summary.ByType) != 0 {
			t.Fatal("expected empty transactions and byType")
		}
	})

	t.Run("aggregates by transaction type", func(t *testing.T) {
		repo := newFakeRepository()
		now := time.Now().UTC()
		repo.listResult = []domain.FeeTransaction{
			{ID: uuid.New(), UserID: userID, TransactionType: "trading", Amount: 100000, Fee: 250, Tax: 0, Total: 100250, Currency: "USD", Metadata: map[string]interface{}{"subtype": "stock"}, CreatedAt: now},
			{ID: uuid.New(), UserID: userID, TransactionType: "trading", Amount: 50000, Fee: 125, Tax: 0, Total: 50125, Currency: "USD", Metadata: map[string]interface{}{"subtype": "stock"}, CreatedAt: now.Add(-time.Hour)},
			{ID: uuid.New(), UserID: userID, TransactionType: "withdrawal", Amount: 200000, Fee: 2000, Tax: 100, Total: 202100, Currency: "USD", CreatedAt: now.Add(-2 * time.Hour)},
		}
		service := newTestService(repo, nil, nil)

		summary, err := service.GetUserFeeSummary(context.Background(), userID, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.TotalFees != 2375 {
			t.Fatalf("expected total fees 2375, got %d", summary.TotalFees)
		}
		if summary.TotalTaxes != 100 {
			t.Fatalf("expected total taxes 100, got %d", summary.TotalTaxes)
		}
		if summary.TotalFeesFormatted != "23.75" {
			t.Fatalf("expected formatted fees 23.75, got %s", summary.TotalFeesFormatted)
		}

		trading := summary.ByType["trading"]
		if trading.Count != 2 || trading.Fees != 375 {
			t.Fatalf("unexpected trading bucket: %+v", trading)
		}
		withdrawal := summary.ByType["withdrawal"]
		if withdrawal.Count != 1 || withdrawal.Taxes != 100 {
			t.Fatalf("unexpected withdrawal bucket: %+v", withdrawal)
		}

		if len(summary.Transactions) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(summary.Transactions))
		}
		if summary.Transactions[0].Subtype != "stock" || summary.Transactions[0].Amount != "1000.00" {
			t.Fatalf("unexpected first entry: %+v", summary.Transactions[0])
		}
	})
}

func TestGetFeeSchedule(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepository()
	repo.tiers[userID] = "pro"
	service := newTestService(repo, nil, nil)

	view, err := service.GetFeeSchedule(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.SubscriptionTier != "pro" {
		t.Fatalf("expected pro tier, got %s", view.SubscriptionTier)
	}
	if view.Trading.Stock.BaseRate != "0.25%" {
		t.Fatalf("expected base rate 0.25%%, got %s", view.Trading.Stock.BaseRate)
	}
	if view.Trading.Stock.EffectiveRate != "0.20%" {
		t.Fatalf("expected effective rate 0.20%% for pro, got %s", view.Trading.Stock.EffectiveRate)
	}
	if view.Withdrawal.WireInternational != "$45.00" {
		t.Fatalf("expected $45.00, got %s", view.Withdrawal.WireInternational)
	}
	if view.Deposit.CreditCard != "2.9% + $0.30" {
		t.Fatalf("unexpected credit card line: %s", view.Deposit.CreditCard)
	}
	if view.UpgradeInfo != "" {
		t.Fatal("pro tier should not see upgrade info")
	}

	freeUser := uuid.New()
	freeView, err := service.GetFeeSchedule(context.Background(), freeUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if freeView.UpgradeInfo == "" {
		t.Fatal("free tier should see upgrade info")
	}
}
