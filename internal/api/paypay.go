package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/middleware"
	"kkmall-be/internal/payment"
)

// Orchestrator is the payment flow the handlers drive.
type Orchestrator interface {
	CreateIntent(ctx context.Context, order payment.CreateOrder) (*payment.Intent, error)
	PollStatus(ctx context.Context, merchantPaymentID string) (*payment.Intent, error)
}

type paypayHandler struct {
	orchestrator Orchestrator
	gateway      payment.Gateway
}

type createPaymentRequest struct {
	Amount     int64               `json:"amount"`
	OrderItems []payment.OrderItem `json:"orderItems"`
}

type refundRequest struct {
	MerchantRefundID string `json:"merchantRefundId"`
	PaymentID        string `json:"paymentId"`
	Amount           int64  `json:"amount"`
	Reason           string `json:"reason,omitempty"`
}

func (h *paypayHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "CreatePayment"),
		zap.String("user_id", userID),
		zap.String("user_email", middleware.UserEmailFromContext(r.Context())),
	)

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	intent, err := h.orchestrator.CreateIntent(r.Context(), payment.CreateOrder{
		Amount:     req.Amount,
		OrderItems: req.OrderItems,
	})
	if err != nil {
		h.writePaymentError(w, log, "create payment failed", err)
		return
	}

	log.Info("payment intent created",
		zap.String("merchant_payment_id", intent.MerchantPaymentID),
		zap.Int64("amount", intent.Amount),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"paymentId":  intent.MerchantPaymentID,
			"qrCodeUrl":  intent.URL,
			"deeplink":   intent.Deeplink,
			"expiryDate": intent.ExpiryDate,
			"status":     intent.Status,
			"amount":     intent.Amount,
		},
	})
}

func (h *paypayHandler) status(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "PaymentStatus"),
	)

	merchantPaymentID := chi.URLParam(r, "merchantPaymentId")
	if merchantPaymentID == "" {
		writeError(w, http.StatusBadRequest, "merchantPaymentId is required")
		return
	}

	intent, err := h.orchestrator.PollStatus(r.Context(), merchantPaymentID)
	if err != nil {
		h.writePaymentError(w, log, "payment status failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"paymentId": intent.MerchantPaymentID,
			"status":    intent.Status,
			"amount":    intent.Amount,
		},
	})
}

func (h *paypayHandler) refund(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "Refund"),
		zap.String("user_id", userID),
		zap.String("user_email", middleware.UserEmailFromContext(r.Context())),
	)

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.MerchantRefundID == "" || req.PaymentID == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "merchantRefundId, paymentId and a positive amount are required")
		return
	}

	result, err := h.gateway.Refund(r.Context(), payment.RefundRequest{
		MerchantRefundID: req.MerchantRefundID,
		PaymentID:        req.PaymentID,
		Amount:           req.Amount,
		Reason:           req.Reason,
	})
	if err != nil {
		h.writePaymentError(w, log, "refund failed", err)
		return
	}

	log.Info("refund accepted",
		zap.String("merchant_refund_id", req.MerchantRefundID),
		zap.Int64("amount", req.Amount),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"refundId": result.RefundID,
			"status":   result.Status,
			"amount":   result.Amount,
		},
	})
}

// writePaymentError maps provider rejections to 400 with the provider
// message and transport failures to 502.
func (h *paypayHandler) writePaymentError(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))

	var providerErr *payment.ProviderError
	if errors.As(err, &providerErr) {
		writeError(w, http.StatusBadRequest, providerErr.Message)
		return
	}

	if errors.Is(err, payment.ErrUnavailable) {
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	writeError(w, http.StatusInternalServerError, "internal error")
}
