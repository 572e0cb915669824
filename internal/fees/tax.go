/**
 * @description
 * Fallback tax calculation from the geographic rate table. Used when the
 * external tax engine is unavailable or automatic tax is turned off.
 */
package fees

// FallbackTaxRate resolves a tax rate in basis points for a country and
// optional state/province. Resolution order: US state table, EU country
// table (a zero entry falls back to the standard VAT rate), Canadian
// province table, then the configured default rate.
func (s *Schedule) FallbackTaxRate(country, state string) int64 {
	if country == "US" && state != "" {
		if rate, ok := s.GeoTax.USStates[state]; ok {
			return rate
		}
	}
	if rate, ok := s.GeoTax.EUCountries[country]; ok {
		if rate == 0 {
			return s.GeoTax.EUDefaultVAT
		}
		return rate
	}
	if country == "CA" && state != "" {
		if rate, ok := s.GeoTax.CAProvinces[state]; ok {
			return rate
		}
	}
	return s.Tax.DefaultRateBps
}

// CalculateFallbackTax computes the tax in cents for an amount using the
// geographic table. Returns 0 when tax is disabled.
func (s *Schedule) CalculateFallbackTax(amountCents int64, country, state string) int64 {
	if !s.Tax.Enabled {
		return 0
	}
	rate := s.FallbackTaxRate(country, state)
	return amountCents * rate / 10000
}
