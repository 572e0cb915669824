/**
 * @description
 * Fee schedule configuration for the fee-service. All rates are expressed
 * in basis points (1 bp = 0.01%) and all fixed amounts in cents.
 *
 * The schedule is immutable once loaded: DefaultSchedule builds the
 * production table, Validate asserts its invariants at startup, and the
 * service receives it by injection so tests can substitute fixtures.
 */
package fees

import "fmt"

// RuleKind discriminates how a FeeRule computes its fee.
type RuleKind string

const (
	KindPercentage RuleKind = "percentage"
	KindFixed      RuleKind = "fixed"
	KindTiered     RuleKind = "tiered"
)

// FeeTier is one amount-range bucket of a tiered rule. Bounds are
// inclusive on both ends.
type FeeTier struct {
	FromCents int64
	ToCents   int64
	RateBps   int64
}

// FeeRule describes how to compute a single fee.
//
// Exactly one of Bps (percentage), Cents (fixed) or Tiers (tiered) is
// meaningful, selected by Kind. MinCents/MaxCents clamp the computed fee;
// a zero or negative MaxCents means unbounded. SurchargeCents is a flat
// amount added after clamping (credit-card deposits carry a $0.30
// per-transaction surcharge on top of the percentage fee).
type FeeRule struct {
	Kind           RuleKind
	Bps            int64
	Cents          int64
	MinCents       int64
	MaxCents       int64
	SurchargeCents int64
	Tiers          []FeeTier
}

// TradingFees holds the per-asset-class trading rules.
type TradingFees struct {
	Stock   FeeRule
	Crypto  FeeRule
	Options FeeRule // fixed per-contract
}

// WithdrawalFees holds the per-method withdrawal rules.
type WithdrawalFees struct {
	ACH               FeeRule
	WireDomestic      FeeRule
	WireInternational FeeRule
	Crypto            FeeRule
	Instant           FeeRule
}

// DepositFees holds the per-method deposit rules.
type DepositFees struct {
	ACH        FeeRule
	Wire       FeeRule
	CreditCard FeeRule
	Crypto     FeeRule
}

// PayoutFees holds the per-speed creator payout rules.
type PayoutFees struct {
	Standard FeeRule
	Express  FeeRule
	Instant  FeeRule
}

// CopyTradingFees holds the copier/creator split for copy trading.
type CopyTradingFees struct {
	Copier  FeeRule
	Creator FeeRule // percentage of profit share
}

// InactivityFees holds the dormant-account fee settings.
type InactivityFees struct {
	Monthly         FeeRule
	GracePeriodDays int
}

// Discount holds the per-tier fee discounts, in basis points of the
// computed fee (10000 = fully waived).
type Discount struct {
	TradingFeeBps    int64
	WithdrawalFeeBps int64
}

// TaxConfig controls whether tax is applied and how.
type TaxConfig struct {
	Enabled        bool
	AutomaticTax   bool // use the external tax engine when available
	DefaultRateBps int64
}

// GeoTaxTable is the fallback geographic rate table used when the
// external tax engine is unavailable or not configured.
type GeoTaxTable struct {
	USStates      map[string]int64
	EUCountries   map[string]int64
	EUDefaultVAT  int64
	CAProvinces   map[string]int64
}

// Schedule is the full fee and tax configuration.
type Schedule struct {
	Trading     TradingFees
	Withdrawal  WithdrawalFees
	Deposit     DepositFees
	Payout      PayoutFees
	CopyTrading CopyTradingFees
	Inactivity  InactivityFees
	Discounts   map[string]Discount
	Tax         TaxConfig
	GeoTax      GeoTaxTable
}

// DefaultSchedule returns the production fee schedule.
func DefaultSchedule() *Schedule {
	return &Schedule{
		Trading: TradingFees{
			Stock:   FeeRule{Kind: KindPercentage, Bps: 25, MinCents: 100, MaxCents: 10000}, // 0.25%, $1 min, $100 max
			Crypto:  FeeRule{Kind: KindPercentage, Bps: 50, MinCents: 200},                  // 0.50%, $2 min, no max
			Options: FeeRule{Kind: KindFixed, Cents: 65},                                    // $0.65 per contract
		},
		Withdrawal: WithdrawalFees{
			ACH:               FeeRule{Kind: KindFixed, Cents: 0},
			WireDomestic:      FeeRule{Kind: KindFixed, Cents: 2500},
			WireInternational: FeeRule{Kind: KindFixed, Cents: 4500},
			Crypto:            FeeRule{Kind: KindPercentage, Bps: 100, MinCents: 500, MaxCents: 5000},
			Instant:           FeeRule{Kind: KindPercentage, Bps: 150, MinCents: 300},
		},
		Deposit: DepositFees{
			ACH:        FeeRule{Kind: KindFixed, Cents: 0},
			Wire:       FeeRule{Kind: KindFixed, Cents: 0},
			CreditCard: FeeRule{Kind: KindPercentage, Bps: 290, SurchargeCents: 30}, // 2.9% + $0.30
			Crypto:     FeeRule{Kind: KindPercentage, Bps: 50, MinCents: 100},
		},
		Payout: PayoutFees{
			Standard: FeeRule{Kind: KindFixed, Cents: 0},
			Express:  FeeRule{Kind: KindPercentage, Bps: 100, MinCents: 200, MaxCents: 2000},
			Instant:  FeeRule{Kind: KindPercentage, Bps: 150, MinCents: 300, MaxCents: 5000},
		},
		CopyTrading: CopyTradingFees{
			Copier:  FeeRule{Kind: KindPercentage, Bps: 0},
			Creator: FeeRule{Kind: KindPercentage, Bps: 2000}, // 20% of profit share
		},
		Inactivity: InactivityFees{
			Monthly:         FeeRule{Kind: KindFixed, Cents: 1000},
			GracePeriodDays: 365,
		},
		Discounts: map[string]Discount{
			"free":       {TradingFeeBps: 0, WithdrawalFeeBps: 0},
			"pro":        {TradingFeeBps: 2000, WithdrawalFeeBps: 5000},
			"elite":      {TradingFeeBps: 5000, WithdrawalFeeBps: 10000},
			"enterprise": {TradingFeeBps: 10000, WithdrawalFeeBps: 10000},
		},
		Tax: TaxConfig{
			Enabled:        true,
			AutomaticTax:   true,
			DefaultRateBps: 0,
		},
		GeoTax: GeoTaxTable{
			USStates: map[string]int64{
				"CA": 725,
				"NY": 400,
				"TX": 625,
				"FL": 600,
			},
			EUCountries: map[string]int64{
				"DE": 1900,
				"FR": 2000,
				"UK": 2000,
			},
			EUDefaultVAT: 2000,
			CAProvinces: map[string]int64{
				"ON": 1300,
				"BC": 1200,
				"QC": 1498,
			},
		},
	}
}

// DiscountFor returns the discount entry for a subscription tier.
// Unknown tiers get no discount.
func (s *Schedule) DiscountFor(tier string) Discount {
	if d, ok := s.Discounts[tier]; ok {
		return d
	}
	return Discount{}
}

// WithdrawalRule resolves the fee rule for a withdrawal method. Wire
// transfers are split by destination.
func (s *Schedule) WithdrawalRule(method string, wireDomestic bool) (FeeRule, bool) {
	switch method {
	case "ach":
		return s.Withdrawal.ACH, true
	case "wire":
		if wireDomestic {
			return s.Withdrawal.WireDomestic, true
		}
		return s.Withdrawal.WireInternational, true
	case "crypto":
		return s.Withdrawal.Crypto, true
	case "instant":
		return s.Withdrawal.Instant, true
	}
	return FeeRule{}, false
}

// DepositRule resolves the fee rule for a deposit method.
func (s *Schedule) DepositRule(method string) (FeeRule, bool) {
	switch method {
	case "ach":
		return s.Deposit.ACH, true
	case "wire":
		return s.Deposit.Wire, true
	case "creditCard":
		return s.Deposit.CreditCard, true
	case "crypto":
		return s.Deposit.Crypto, true
	}
	return FeeRule{}, false
}

// PayoutRule resolves the fee rule for a payout speed.
func (s *Schedule) PayoutRule(speed string) (FeeRule, bool) {
	switch speed {
	case "standard":
		return s.Payout.Standard, true
	case "express":
		return s.Payout.Express, true
	case "instant":
		return s.Payout.Instant, true
	}
	return FeeRule{}, false
}

// Validate asserts the configuration invariants the calculator relies on.
// It is called once at startup; a failure means the schedule itself is
// broken and the process should not serve traffic.
func (s *Schedule) Validate() error {
	rules := map[string]FeeRule{
		"trading.stock":                s.Trading.Stock,
		"trading.crypto":               s.Trading.Crypto,
		"trading.options":              s.Trading.Options,
		"withdrawal.ach":               s.Withdrawal.ACH,
		"withdrawal.wire.domestic":     s.Withdrawal.WireDomestic,
		"withdrawal.wire.international": s.Withdrawal.WireInternational,
		"withdrawal.crypto":            s.Withdrawal.Crypto,
		"withdrawal.instant":           s.Withdrawal.Instant,
		"deposit.ach":                  s.Deposit.ACH,
		"deposit.wire":                 s.Deposit.Wire,
		"deposit.creditCard":           s.Deposit.CreditCard,
		"deposit.crypto":               s.Deposit.Crypto,
		"payout.standard":              s.Payout.Standard,
		"payout.express":               s.Payout.Express,
		"payout.instant":               s.Payout.Instant,
		"copyTrading.copier":           s.CopyTrading.Copier,
		"copyTrading.creator":          s.CopyTrading.Creator,
		"inactivity.monthly":           s.Inactivity.Monthly,
	}
	for name, rule := range rules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("fee rule %s: %w", name, err)
		}
	}

	for tier, d := range s.Discounts {
		if d.TradingFeeBps < 0 || d.TradingFeeBps > 10000 {
			return fmt.Errorf("discount %s: trading discount %d out of range [0,10000]", tier, d.TradingFeeBps)
		}
		if d.WithdrawalFeeBps < 0 || d.WithdrawalFeeBps > 10000 {
			return fmt.Errorf("discount %s: withdrawal discount %d out of range [0,10000]", tier, d.WithdrawalFeeBps)
		}
	}

	if s.Tax.DefaultRateBps < 0 {
		return fmt.Errorf("tax: negative default rate %d", s.Tax.DefaultRateBps)
	}
	return nil
}

func (r FeeRule) validate() error {
	switch r.Kind {
	case KindPercentage:
		if r.Bps < 0 {
			return fmt.Errorf("negative rate %d bps", r.Bps)
		}
	case KindFixed:
		if r.Cents < 0 {
			return fmt.Errorf("negative fixed amount %d", r.Cents)
		}
	case KindTiered:
		if len(r.Tiers) == 0 {
			return fmt.Errorf("tiered rule without tiers")
		}
		for i, t := range r.Tiers {
			if t.FromCents > t.ToCents {
				return fmt.Errorf("tier %d: from %d > to %d", i, t.FromCents, t.ToCents)
			}
			if t.RateBps < 0 {
				return fmt.Errorf("tier %d: negative rate %d", i, t.RateBps)
			}
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	if r.MinCents < 0 {
		return fmt.Errorf("negative min %d", r.MinCents)
	}
	if r.MaxCents > 0 && r.MinCents > r.MaxCents {
		return fmt.Errorf("min %d exceeds max %d", r.MinCents, r.MaxCents)
	}
	return nil
}
