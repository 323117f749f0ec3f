package payment

// Status is the lifecycle state of a payment attempt. CREATED,
// PENDING, COMPLETED and FAILED come from the provider; TIMED_OUT is
// assigned locally when polling exhausts its budget while the provider
// still reports PENDING -- callers treat it as "ask again later", not
// as a failed payment.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Terminal reports whether the provider will never change this status
// again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// OrderItem is one line of the order submitted with a QR code, in the
// provider's wire shape.
type OrderItem struct {
	Name      string      `json:"name"`
	Category  string      `json:"category,omitempty"`
	Quantity  int         `json:"quantity"`
	ProductID string      `json:"productId,omitempty"`
	UnitPrice MoneyAmount `json:"unitPrice"`
}

type MoneyAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder is the checkout payload handed to CreateIntent.
type CreateOrder struct {
	Amount     int64
	OrderItems []OrderItem
}

// QRCode is the provider's response to a create-code request.
type QRCode struct {
	CodeID     string
	URL        string
	Deeplink   string
	ExpiryDate int64
}

// Details is the provider's view of a payment attempt.
type Details struct {
	PaymentID  string
	Status     Status
	Amount     int64
	AcceptedAt int64
}

type RefundRequest struct {
	MerchantRefundID string
	PaymentID        string
	Amount           int64
	Reason           string
}

type RefundResult struct {
	RefundID string
	Status   Status
	Amount   int64
}

// Intent correlates one payment attempt across create and poll calls
// via the merchant payment identifier.
type Intent struct {
	MerchantPaymentID string
	Amount            int64
	Status            Status
	URL               string
	Deeplink          string
	ExpiryDate        int64
}
