package fees

import "testing"

func TestDefaultScheduleValidates(t *testing.T) {
	if err := DefaultSchedule().Validate(); err != nil {
		t.Fatalf("default schedule failed validation: %v", err)
	}
}

func TestValidateRejectsBrokenRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schedule)
	}{
		{
			name: "min above max",
			mutate: func(s *Schedule) {
				s.Trading.Stock = FeeRule{Kind: KindPercentage, Bps: 25, MinCents: 500, MaxCents: 100}
			},
		},
		{
			name: "negative rate",
			mutate: func(s *Schedule) {
				s.Withdrawal.Crypto = FeeRule{Kind: KindPercentage, Bps: -1}
			},
		},
		{
			name: "unknown kind",
			mutate: func(s *Schedule) {
				s.Deposit.ACH = FeeRule{Kind: RuleKind("flat")}
			},
		},
		{
			name: "tiered rule without tiers",
			mutate: func(s *Schedule) {
				s.Payout.Express = FeeRule{Kind: KindTiered}
			},
		},
		{
			name: "inverted tier range",
			mutate: func(s *Schedule) {
				s.Payout.Express = FeeRule{Kind: KindTiered, Tiers: []FeeTier{{FromCents: 100, ToCents: 50, RateBps: 10}}}
			},
		},
		{
			name: "discount above 100 percent",
			mutate: func(s *Schedule) {
				s.Discounts["pro"] = Discount{TradingFeeBps: 10001}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSchedule()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestWithdrawalRuleWireSplit(t *testing.T) {
	s := DefaultSchedule()

	domestic, ok := s.WithdrawalRule("wire", true)
	if !ok || domestic.Cents != 2500 {
		t.Fatalf("expected domestic wire fee 2500, got %+v ok=%v", domestic, ok)
	}

	international, ok := s.WithdrawalRule("wire", false)
	if !ok || international.Cents != 4500 {
		t.Fatalf("expected international wire fee 4500, got %+v ok=%v", international, ok)
	}

	if _, ok := s.WithdrawalRule("pigeon", false); ok {
		t.Fatal("expected unknown method to be rejected")
	}
}

func TestDiscountForUnknownTier(t *testing.T) {
	s := DefaultSchedule()

	d := s.DiscountFor("platinum")
	if d.TradingFeeBps != 0 || d.WithdrawalFeeBps != 0 {
		t.Fatalf("expected zero discount for unknown tier, got %+v", d)
	}

	pro := s.DiscountFor("pro")
	if pro.TradingFeeBps != 2000 || pro.WithdrawalFeeBps != 5000 {
		t.Fatalf("unexpected pro discounts: %+v", pro)
	}
}
