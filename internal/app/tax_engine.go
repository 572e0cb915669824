/**
 * @description
 * Stripe-backed implementation of the TaxEngine interface. Maps the user's
 * tax profile onto the Stripe Tax calculation request and returns the
 * exclusive tax amount.
 */

package app

import (
	"context"

	"github.com/kairo/fee-service/internal/domain"
	"github.com/kairo/fee-service/pkg/stripeclient"
)

// StripeTaxEngine adapts the Stripe Tax client to the TaxEngine interface.
type StripeTaxEngine struct {
	client *stripeclient.Client
}

// NewStripeTaxEngine creates a tax engine backed by the given client.
func NewStripeTaxEngine(client *stripeclient.Client) *StripeTaxEngine {
	return &StripeTaxEngine{client: client}
}

// CalculateTax creates a Stripe Tax calculation for the amount and returns
// the exclusive tax in cents.
func (e *StripeTaxEngine) CalculateTax(ctx context.Context, amountCents int64, reference, customerID string, profile *domain.TaxProfile) (int64, error) {
	req := stripeclient.TaxCalculationRequest{
		Currency:    "usd",
		AmountCents: amountCents,
		Reference:   reference,
		CustomerID:  customerID,
	}
	if profile != nil {
		req.Address = &stripeclient.Address{
			Country:    profile.Country,
			State:      profile.State,
			PostalCode: profile.PostalCode,
			City:       profile.City,
			Line1:      profile.Address,
		}
	}

	calc, err := e.client.CreateTaxCalculation(ctx, req)
	if err != nil {
		return 0, err
	}
	return calc.TaxAmountExclusive, nil
}
