package payment

import (
	"context"
	"time"

	"kkmall-be/internal/logger"

	"go.uber.org/zap"
)

const (
	pollAttempts = 3
	pollDelay    = time.Second
)

// Orchestrator drives the two-step payment handshake: create a QR code
// for the order, then poll for a terminal status. It does not finalize
// orders; callers consume the terminal state.
type Orchestrator struct {
	gateway Gateway

	attempts int
	delay    time.Duration

	newID func() string
}

func NewOrchestrator(gateway Gateway) *Orchestrator {
	return &Orchestrator{
		gateway:  gateway,
		attempts: pollAttempts,
		delay:    pollDelay,
		newID:    NewMerchantPaymentID,
	}
}

// CreateIntent generates a fresh merchant payment identifier and
// submits the order to the provider.
func (o *Orchestrator) CreateIntent(ctx context.Context, order CreateOrder) (*Intent, error) {
	merchantPaymentID := o.newID()

	qr, err := o.gateway.CreateQRCode(ctx, merchantPaymentID, order)
	if err != nil {
		return nil, err
	}

	return &Intent{
		MerchantPaymentID: merchantPaymentID,
		Amount:            order.Amount,
		Status:            StatusCreated,
		URL:               qr.URL,
		Deeplink:          qr.Deeplink,
		ExpiryDate:        qr.ExpiryDate,
	}, nil
}

// PollStatus asks the provider for the payment state, retrying on
// PENDING up to the attempt budget with a fixed delay between polls.
// It returns as soon as the provider reports a terminal status; an
// exhausted budget yields StatusTimedOut, which is not a failure.
func (o *Orchestrator) PollStatus(ctx context.Context, merchantPaymentID string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(zap.String("merchant_payment_id", merchantPaymentID))

	for attempt := 1; attempt <= o.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(o.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		details, err := o.gateway.GetPaymentDetails(ctx, merchantPaymentID)
		if err != nil {
			return nil, err
		}

		if details.Status.Terminal() {
			log.Info("payment reached terminal state",
				zap.String("status", string(details.Status)),
				zap.Int("attempt", attempt),
			)
			return &Intent{
				MerchantPaymentID: merchantPaymentID,
				Amount:            details.Amount,
				Status:            details.Status,
			}, nil
		}

		log.Debug("payment still pending", zap.Int("attempt", attempt))
	}

	log.Info("payment poll budget exhausted")
	return &Intent{
		MerchantPaymentID: merchantPaymentID,
		Status:            StatusTimedOut,
	}, nil
}
