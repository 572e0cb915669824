/**
 * @description
 * Pure fee calculation. All arithmetic is integer math on cents; division
 * is floor division (Go's truncating division matches floor for the
 * non-negative operands used here), producing exact, reproducible fees.
 */
package fees

// CalculateFee applies a fee rule to an amount in cents and returns the
// fee in cents.
//
// Percentage rules compute floor(amount*bps/10000). Fixed rules ignore the
// amount. Tiered rules use the first tier whose inclusive range contains
// the amount; no matching tier means no fee.
//
// discountBps (0..10000) discounts the computed fee, but only for
// percentage rules: fixed and tiered fees are never discounted. The
// min/max clamp runs after the discount, so a discounted fee can still be
// pulled back up to the rule's minimum. Any surcharge is added last,
// outside the clamp.
func CalculateFee(amountCents int64, rule FeeRule, discountBps int64) int64 {
	var fee int64

	switch rule.Kind {
	case KindPercentage:
		fee = amountCents * rule.Bps / 10000
		if discountBps > 0 {
			fee = fee * (10000 - discountBps) / 10000
		}
	case KindFixed:
		fee = rule.Cents
	case KindTiered:
		for _, t := range rule.Tiers {
			if amountCents >= t.FromCents && amountCents <= t.ToCents {
				fee = amountCents * t.RateBps / 10000
				break
			}
		}
	}

	if rule.MinCents > 0 && fee < rule.MinCents {
		fee = rule.MinCents
	}
	if rule.MaxCents > 0 && fee > rule.MaxCents {
		fee = rule.MaxCents
	}

	return fee + rule.SurchargeCents
}
