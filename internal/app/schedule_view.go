/**
 * @description
 * Human-readable fee schedule rendering for the transparency endpoint.
 * Rates are presented as percent strings with the caller's subscription
 * discounts applied.
 */

package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kairo/fee-service/internal/domain"
	"github.com/kairo/fee-service/internal/fees"
)

// TradingScheduleView describes the trading fee rates for one tier.
type TradingScheduleView struct {
	Stock struct {
		BaseRate      string `json:"baseRate"`
		Discount      string `json:"discount"`
		EffectiveRate string `json:"effectiveRate"`
		Min           string `json:"min"`
		Max           string `json:"max"`
	} `json:"stock"`
	Crypto struct {
		BaseRate string `json:"baseRate"`
		Discount string `json:"discount"`
		Min      string `json:"min"`
		Max      string `json:"max"`
	} `json:"crypto"`
	Options struct {
		PerContract string `json:"perContract"`
	} `json:"options"`
}

// WithdrawalScheduleView describes the withdrawal fee rates.
type WithdrawalScheduleView struct {
	ACH               string `json:"ach"`
	WireDomestic      string `json:"wireDomestic"`
	WireInternational string `json:"wireInternational"`
	Crypto            string `json:"crypto"`
	Instant           string `json:"instant"`
	Discount          string `json:"discount"`
}

// DepositScheduleView describes the deposit fee rates.
type DepositScheduleView struct {
	ACH        string `json:"ach"`
	Wire       string `json:"wire"`
	CreditCard string `json:"creditCard"`
	Crypto     string `json:"crypto"`
}

// PayoutScheduleView describes the payout fee rates.
type PayoutScheduleView struct {
	Standard string `json:"standard"`
	Express  string `json:"express"`
	Instant  string `json:"instant"`
}

// FeeScheduleView is the full rendered schedule returned by the
// transparency endpoint.
type FeeScheduleView struct {
	Trading          TradingScheduleView    `json:"trading"`
	Withdrawal       WithdrawalScheduleView `json:"withdrawal"`
	Deposit          DepositScheduleView    `json:"deposit"`
	Payout           PayoutScheduleView     `json:"payout"`
	SubscriptionTier string                 `json:"subscriptionTier"`
	UpgradeInfo      string                 `json:"upgradeInfo,omitempty"`
}

func percent(bps int64) string {
	return strconv.FormatFloat(float64(bps)/100, 'f', -1, 64) + "%"
}

// percent2 always renders two decimals; used for the discount-adjusted
// effective rate.
func percent2(bps int64) string {
	return fmt.Sprintf("%.2f%%", float64(bps)/100)
}

func dollars(cents int64) string {
	return "$" + domain.FormatCents(cents)
}

// GetFeeSchedule renders the fee schedule with the caller's tier discounts
// applied.
func (s *Service) GetFeeSchedule(ctx context.Context, userID uuid.UUID) (*FeeScheduleView, error) {
	tier, err := s.subscriptionTier(ctx, userID)
	if err != nil {
		return nil, err
	}
	discount := s.schedule.DiscountFor(tier)

	view := &FeeScheduleView{SubscriptionTier: tier}

	stock := s.schedule.Trading.Stock
	view.Trading.Stock.BaseRate = percent(stock.Bps)
	view.Trading.Stock.Discount = percent(discount.TradingFeeBps)
	view.Trading.Stock.EffectiveRate = percent2(stock.Bps * (10000 - discount.TradingFeeBps) / 10000)
	view.Trading.Stock.Min = dollars(stock.MinCents)
	view.Trading.Stock.Max = dollars(stock.MaxCents)

	crypto := s.schedule.Trading.Crypto
	view.Trading.Crypto.BaseRate = percent(crypto.Bps)
	view.Trading.Crypto.Discount = percent(discount.TradingFeeBps)
	view.Trading.Crypto.Min = dollars(crypto.MinCents)
	view.Trading.Crypto.Max = "None"

	view.Trading.Options.PerContract = dollars(s.schedule.Trading.Options.Cents)

	view.Withdrawal = WithdrawalScheduleView{
		ACH:               freeOrFixed(s.schedule.Withdrawal.ACH),
		WireDomestic:      dollars(s.schedule.Withdrawal.WireDomestic.Cents),
		WireInternational: dollars(s.schedule.Withdrawal.WireInternational.Cents),
		Crypto:            percentWithBounds(s.schedule.Withdrawal.Crypto),
		Instant:           percentWithBounds(s.schedule.Withdrawal.Instant),
		Discount:          percent(discount.WithdrawalFeeBps),
	}

	view.Deposit = DepositScheduleView{
		ACH:        freeOrFixed(s.schedule.Deposit.ACH),
		Wire:       freeOrFixed(s.schedule.Deposit.Wire),
		CreditCard: fmt.Sprintf("%s + %s", percent(s.schedule.Deposit.CreditCard.Bps), dollars(s.schedule.Deposit.CreditCard.SurchargeCents)),
		Crypto:     percentWithBounds(s.schedule.Deposit.Crypto),
	}

	view.Payout = PayoutScheduleView{
		Standard: "Free (7-10 days)",
		Express:  fmt.Sprintf("%s (1-3 days, min %s, max %s)", percent(s.schedule.Payout.Express.Bps), dollars(s.schedule.Payout.Express.MinCents), dollars(s.schedule.Payout.Express.MaxCents)),
		Instant:  fmt.Sprintf("%s (same day, min %s, max %s)", percent(s.schedule.Payout.Instant.Bps), dollars(s.schedule.Payout.Instant.MinCents), dollars(s.schedule.Payout.Instant.MaxCents)),
	}

	if tier == domain.TierFree {
		view.UpgradeInfo = "Upgrade to Pro or Elite for reduced fees"
	}

	return view, nil
}

func freeOrFixed(rule fees.FeeRule) string {
	if rule.Cents == 0 {
		return "Free"
	}
	return dollars(rule.Cents)
}

func percentWithBounds(rule fees.FeeRule) string {
	out := percent(rule.Bps)
	switch {
	case rule.MinCents > 0 && rule.MaxCents > 0:
		out += fmt.Sprintf(" (min %s, max %s)", dollars(rule.MinCents), dollars(rule.MaxCents))
	case rule.MinCents > 0:
		out += fmt.Sprintf(" (min %s)", dollars(rule.MinCents))
	case rule.MaxCents > 0:
		out += fmt.Sprintf(" (max %s)", dollars(rule.MaxCents))
	}
	return out
}
