package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kkmall-be/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://stg-api.sandbox.paypay.ne.jp"
	productionBaseURL = "https://api.paypay.ne.jp"

	resultSuccess = "SUCCESS"
)

// Gateway is the provider boundary the orchestrator and the API
// handlers depend on.
type Gateway interface {
	CreateQRCode(ctx context.Context, merchantPaymentID string, order CreateOrder) (*QRCode, error)
	GetPaymentDetails(ctx context.Context, merchantPaymentID string) (*Details, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

type Config struct {
	APIKey          string
	APISecret       string
	MerchantID      string
	RedirectBaseURL string
	Production      bool
}

type client struct {
	baseURL         string
	redirectBaseURL string
	signer          *signer
	httpClient      *http.Client
	breaker         *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) Gateway {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		logger.L().Warn("payment provider credentials are empty")
	}

	baseURL := sandboxBaseURL
	if cfg.Production {
		baseURL = productionBaseURL
	}

	return &client{
		baseURL:         baseURL,
		redirectBaseURL: cfg.RedirectBaseURL,
		signer:          newSigner(cfg.APIKey, cfg.APISecret, cfg.MerchantID),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name: "paypay",
		}),
	}
}

// ----------------- CreateQRCode -----------------

func (c *client) CreateQRCode(ctx context.Context, merchantPaymentID string, order CreateOrder) (*QRCode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_payment_id", merchantPaymentID),
		zap.Int64("amount", order.Amount),
	)

	body := map[string]any{
		"merchantPaymentId": merchantPaymentID,
		"codeType":          "ORDER_QR",
		"amount":            MoneyAmount{Amount: order.Amount, Currency: "JPY"},
		"orderItems":        order.OrderItems,
		"requestedAt":       time.Now().Unix(),
		"redirectUrl":       fmt.Sprintf("%s/%s", c.redirectBaseURL, merchantPaymentID),
		"redirectType":      "WEB_LINK",
	}

	log.Info("creating payment QR code")

	data, err := c.do(ctx, http.MethodPost, "/v2/codes", body, ErrCreateFailed)
	if err != nil {
		return nil, err
	}

	var res struct {
		CodeID     string `json:"codeId"`
		URL        string `json:"url"`
		Deeplink   string `json:"deeplink"`
		ExpiryDate int64  `json:"expiryDate"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		log.Error("failed decoding create response", zap.Error(err))
		return nil, err
	}

	log.Info("payment QR code created", zap.String("code_id", res.CodeID))

	return &QRCode{
		CodeID:     res.CodeID,
		URL:        res.URL,
		Deeplink:   res.Deeplink,
		ExpiryDate: res.ExpiryDate,
	}, nil
}

// ----------------- GetPaymentDetails -----------------

// GetPaymentDetails is read-only against the provider and safe to
// repeat with the same id.
func (c *client) GetPaymentDetails(ctx context.Context, merchantPaymentID string) (*Details, error) {
	path := "/v2/codes/payments/" + merchantPaymentID

	data, err := c.do(ctx, http.MethodGet, path, nil, ErrStatusFailed)
	if err != nil {
		return nil, err
	}

	var res struct {
		PaymentID  string `json:"paymentId"`
		Status     string `json:"status"`
		AcceptedAt int64  `json:"acceptedAt"`
		Amount     struct {
			Amount int64 `json:"amount"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	return &Details{
		PaymentID:  res.PaymentID,
		Status:     Status(res.Status),
		Amount:     res.Amount.Amount,
		AcceptedAt: res.AcceptedAt,
	}, nil
}

// ----------------- Refund -----------------

func (c *client) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_refund_id", req.MerchantRefundID),
		zap.String("payment_id", req.PaymentID),
		zap.Int64("amount", req.Amount),
	)

	body := map[string]any{
		"merchantRefundId": req.MerchantRefundID,
		"paymentId":        req.PaymentID,
		"amount":           MoneyAmount{Amount: req.Amount, Currency: "JPY"},
		"requestedAt":      time.Now().Unix(),
	}
	if req.Reason != "" {
		body["reason"] = req.Reason
	}

	log.Info("requesting refund")

	data, err := c.do(ctx, http.MethodPost, "/v2/refunds", body, ErrRefundFailed)
	if err != nil {
		return nil, err
	}

	var res struct {
		RefundID string `json:"refundId"`
		Status   string `json:"status"`
		Amount   struct {
			Amount int64 `json:"amount"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	log.Info("refund accepted", zap.String("refund_id", res.RefundID))

	return &RefundResult{
		RefundID: res.RefundID,
		Status:   Status(res.Status),
		Amount:   res.Amount.Amount,
	}, nil
}

// ----------------- transport -----------------

// do signs and sends one request through the circuit breaker and
// unwraps the provider's response envelope. A non-SUCCESS resultInfo
// wraps sentinel together with the provider's code and message.
func (c *client) do(ctx context.Context, method, path string, body map[string]any, sentinel error) (json.RawMessage, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var rawBody []byte
	if body != nil {
		var err error
		rawBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if rawBody != nil {
			reqBody = bytes.NewBuffer(rawBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		if rawBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.signer.apply(req, rawBody)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn("payment circuit open")
		} else {
			log.Error("payment provider request failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var envelope struct {
		ResultInfo struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"resultInfo"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		log.Error("failed decoding provider response", zap.Error(err))
		return nil, err
	}

	if envelope.ResultInfo.Code != resultSuccess {
		log.Warn("provider returned non-success result",
			zap.String("code", envelope.ResultInfo.Code),
			zap.String("message", envelope.ResultInfo.Message),
		)
		return nil, fmt.Errorf("%w: %w", sentinel, &ProviderError{
			Code:    envelope.ResultInfo.Code,
			Message: envelope.ResultInfo.Message,
		})
	}

	return envelope.Data, nil
}
