/**
 * @description
 * This file contains the HTTP handlers for the fee-service's API
 * endpoints. Handlers parse incoming requests, convert decimal dollar
 * amounts to integer cents, call the application service, and write the
 * `{success, ...}` response envelope.
 *
 * @dependencies
 * - encoding/json, log, math, net/http, time: Standard Go libraries.
 * - github.com/go-chi/chi/v5, github.com/google/uuid.
 * - internal/app, internal/domain: For service logic and models.
 */

package api

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kairo/fee-service/internal/app"
	"github.com/kairo/fee-service/internal/domain"
)

// FeeHandlers holds the application service that handlers will interact with.
type FeeHandlers struct {
	service *app.Service
}

// NewFeeHandlers creates a new FeeHandlers with the given service.
func NewFeeHandlers(service *app.Service) *FeeHandlers {
	return &FeeHandlers{service: service}
}

// toCents converts a decimal dollar amount to integer cents, truncating
// sub-cent precision: $1.999 becomes 199 cents, never 200.
func toCents(amount float64) int64 {
	return int64(math.Floor(amount * 100))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *FeeHandlers) writeError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeServiceError maps a service failure onto the response: validation
// errors keep their specific message with a 400; anything else is logged
// and surfaced as a generic non-leaking 500.
func (h *FeeHandlers) writeServiceError(w http.ResponseWriter, endpoint, generic string, err error) {
	if app.IsValidationError(err) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("level=error component=api endpoint=%s err=%v", endpoint, err)
	h.writeError(w, http.StatusInternalServerError, generic)
}

func (h *FeeHandlers) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}

type calculateTradingRequest struct {
	Amount    float64 `json:"amount"`
	AssetType string  `json:"assetType"`
	Quantity  int64   `json:"quantity"`
}

// CalculateTradingFeeHandler handles POST /calculate/trading.
func (h *FeeHandlers) CalculateTradingFeeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req calculateTradingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.AssetType == "" {
		h.writeError(w, http.StatusBadRequest, "Amount and asset type are required")
		return
	}

	calculation, err := h.service.CalculateTradingFee(r.Context(), userID, toCents(req.Amount), domain.AssetType(req.AssetType), req.Quantity)
	if err != nil {
		h.writeServiceError(w, "calculate_trading", "Failed to calculate trading fee", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"calculation": calculation,
	})
}

type calculateWithdrawalRequest struct {
	Amount       float64 `json:"amount"`
	Method       string  `json:"method"`
	WireDomestic bool    `json:"wireDomestic"`
}

// CalculateWithdrawalFeeHandler handles POST /calculate/withdrawal.
func (h *FeeHandlers) CalculateWithdrawalFeeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req calculateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.Method == "" {
		h.writeError(w, http.StatusBadRequest, "Amount and method are required")
		return
	}

	calculation, err := h.service.CalculateWithdrawalFee(r.Context(), userID, toCents(req.Amount), domain.WithdrawalMethod(req.Method), req.WireDomestic)
	if err != nil {
		h.writeServiceError(w, "calculate_withdrawal", "Failed to calculate withdrawal fee", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"calculation": calculation,
	})
}

type calculateDepositRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// CalculateDepositFeeHandler handles POST /calculate/deposit.
func (h *FeeHandlers) CalculateDepositFeeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req calculateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.Method == "" {
		h.writeError(w, http.StatusBadRequest, "Amount and method are required")
		return
	}

	calculation, err := h.service.CalculateDepositFee(r.Context(), userID, toCents(req.Amount), domain.DepositMethod(req.Method))
	if err != nil {
		h.writeServiceError(w, "calculate_deposit", "Failed to calculate deposit fee", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"calculation": calculation,
	})
}

type calculatePayoutRequest struct {
	Amount float64 `json:"amount"`
	Speed  string  `json:"speed"`
}

// CalculatePayoutFeeHandler handles POST /calculate/payout.
func (h *FeeHandlers) CalculatePayoutFeeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req calculatePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.Speed == "" {
		h.writeError(w, http.StatusBadRequest, "Amount and speed are required")
		return
	}

	calculation, err := h.service.CalculatePayoutFee(r.Context(), userID, toCents(req.Amount), domain.PayoutSpeed(req.Speed))
	if err != nil {
		h.writeServiceError(w, "calculate_payout", "Failed to calculate payout fee", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"calculation": calculation,
	})
}

type createTransferRequest struct {
	Amount      float64                `json:"amount"`
	Method      string                 `json:"method"`
	Speed       string                 `json:"speed"`
	Destination string                 `json:"destination"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type transferResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	Tax       string `json:"tax"`
	NetAmount string `json:"netAmount"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Speed     string `json:"speed"`
}

func metadataTaxCents(metadata map[string]interface{}) int64 {
	switch tax := metadata["tax"].(type) {
	case int64:
		return tax
	case float64:
		return int64(tax)
	}
	return 0
}

// CreateWithdrawalHandler handles POST /withdrawal.
func (h *FeeHandlers) CreateWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.Method == "" || req.Speed == "" || req.Destination == "" {
		h.writeError(w, http.StatusBadRequest, "Amount, method, speed, and destination are required")
		return
	}

	withdrawal, err := h.service.CreateWithdrawal(r.Context(), userID, toCents(req.Amount), req.Method, req.Speed, req.Destination, req.Metadata)
	if err != nil {
		h.writeServiceError(w, "create_withdrawal", "Failed to create withdrawal", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"withdrawal": transferResponse{
			ID:        withdrawal.ID.String(),
			Amount:    domain.FormatCents(withdrawal.Amount),
			Fee:       domain.FormatCents(withdrawal.Fee),
			Tax:       domain.FormatCents(metadataTaxCents(withdrawal.Metadata)),
			NetAmount: domain.FormatCents(withdrawal.Total),
			Status:    withdrawal.Status,
			Method:    withdrawal.Method,
			Speed:     req.Speed,
		},
	})
}

// CreatePayoutHandler handles POST /payout.
func (h *FeeHandlers) CreatePayoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 || req.Method == "" || req.Speed == "" || req.Destination == "" {
		h.writeError(w, http.StatusBadRequest, "Amount, method, speed, and destination are required")
		return
	}

	payout, err := h.service.CreatePayout(r.Context(), userID, toCents(req.Amount), req.Method, req.Speed, req.Destination, req.Metadata)
	if err != nil {
		h.writeServiceError(w, "create_payout", "Failed to create payout", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"payout": transferResponse{
			ID:        payout.ID.String(),
			Amount:    domain.FormatCents(payout.Amount),
			Fee:       domain.FormatCents(payout.Fee),
			Tax:       domain.FormatCents(metadataTaxCents(payout.Metadata)),
			NetAmount: domain.FormatCents(payout.Total),
			Status:    payout.Status,
			Method:    payout.Method,
			Speed:     req.Speed,
		},
	})
}

// parseDateParam accepts RFC 3339 timestamps or plain dates.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *FeeHandlers) respondSummary(w http.ResponseWriter, r *http.Request, userID uuid.UUID, endpoint string) {
	from, err := parseDateParam(r.URL.Query().Get("startDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("endDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid endDate")
		return
	}

	summary, err := h.service.GetUserFeeSummary(r.Context(), userID, from, to)
	if err != nil {
		h.writeServiceError(w, endpoint, "Failed to get fee summary", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"summary": summary,
	})
}

// FeeSummaryHandler handles GET /summary.
func (h *FeeHandlers) FeeSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	h.respondSummary(w, r, userID, "fee_summary")
}

// InternalUserSummaryHandler handles GET /internal/fees/users/{userID}/summary.
func (h *FeeHandlers) InternalUserSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	h.respondSummary(w, r, userID, "internal_fee_summary")
}

// FeeScheduleHandler handles GET /schedule.
func (h *FeeHandlers) FeeScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	schedule, err := h.service.GetFeeSchedule(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "fee_schedule", "Failed to get fee schedule", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"schedule": schedule,
	})
}
