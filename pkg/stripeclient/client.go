/**
 * @description
 * This package provides a client for the Stripe Tax API. It encapsulates
 * the logic for making authenticated HTTP requests to the tax-calculation
 * endpoint, building the form-encoded request body, and parsing responses.
 *
 * @dependencies
 * - context, fmt, net/http, net/url, strings, time: Standard Go libraries.
 */
package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production Stripe API host.
const DefaultBaseURL = "https://api.stripe.com"

// Client is a client for the Stripe Tax API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Stripe Tax API client. The HTTP client carries a
// bounded timeout so a provider outage degrades to the local fallback
// instead of hanging the request.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Address is the customer address submitted for tax calculation.
type Address struct {
	Country    string
	State      string
	PostalCode string
	City       string
	Line1      string
}

// TaxCalculationRequest is the input for CreateTaxCalculation.
type TaxCalculationRequest struct {
	Currency   string
	AmountCents int64
	Reference  string
	CustomerID string
	Address    *Address
}

// TaxCalculation is the subset of Stripe's tax calculation response the
// fee-service consumes.
type TaxCalculation struct {
	ID                 string `json:"id"`
	AmountTotal        int64  `json:"amount_total"`
	TaxAmountExclusive int64  `json:"tax_amount_exclusive"`
	TaxAmountInclusive int64  `json:"tax_amount_inclusive"`
}

// ErrorResponse represents an error returned by the Stripe API.
type ErrorResponse struct {
	Err struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.Err.Message != "" {
		return fmt.Sprintf("stripe api error: %s - %s", e.Err.Type, e.Err.Message)
	}
	return "unknown stripe api error"
}

// CreateTaxCalculation calls POST /v1/tax/calculations and returns the
// computed calculation.
func (c *Client) CreateTaxCalculation(ctx context.Context, req TaxCalculationRequest) (*TaxCalculation, error) {
	form := url.Values{}
	form.Set("currency", req.Currency)
	form.Set("line_items[0][amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][reference]", req.Reference)
	if req.CustomerID != "" {
		form.Set("customer", req.CustomerID)
	}
	if req.Address != nil {
		form.Set("customer_details[address][country]", req.Address.Country)
		if req.Address.State != "" {
			form.Set("customer_details[address][state]", req.Address.State)
		}
		if req.Address.PostalCode != "" {
			form.Set("customer_details[address][postal_code]", req.Address.PostalCode)
		}
		if req.Address.City != "" {
			form.Set("customer_details[address][city]", req.Address.City)
		}
		if req.Address.Line1 != "" {
			form.Set("customer_details[address][line1]", req.Address.Line1)
		}
		form.Set("customer_details[address_source]", "shipping")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/tax/calculations", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Err.Message != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("stripe api returned status %d", resp.StatusCode)
	}

	var calc TaxCalculation
	if err := json.Unmarshal(body, &calc); err != nil {
		return nil, fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return &calc, nil
}
