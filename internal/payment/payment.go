package payment

import (
	"time"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/core/common/validation"
)

// Method is how the customer pays: a mobile money provider or the internal
// salon wallet balance.
type Method string

const (
	MethodMTNMoMo     Method = "mtn_momo"
	MethodAirtelMoney Method = "airtel_money"
	MethodWallet      Method = "wallet"
)

func (m Method) IsMobileMoney() bool {
	return m == MethodMTNMoMo || m == MethodAirtelMoney
}

func (m Method) Known() bool {
	switch m {
	case MethodMTNMoMo, MethodAirtelMoney, MethodWallet:
		return true
	}
	return false
}

// RequiresConfirmation reports whether the method settles asynchronously and
// needs status polling after initiation. Wallet debits settle in the
// initiate call itself.
func (m Method) RequiresConfirmation() bool {
	return m.IsMobileMoney()
}

type PurposeType string

const (
	PurposeTopUp          PurposeType = "top_up"
	PurposeServicePayment PurposeType = "service_payment"
	PurposeSubscription   PurposeType = "subscription"
)

// Purpose ties a payment to the business entity it settles: a wallet top-up,
// a salon service appointment or a subscription period.
type Purpose struct {
	Type        PurposeType `json:"type"`
	EntityID    string      `json:"entity_id,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Status values reported by the payments backend.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PaymentRequest is the input a session collects before submission. Amounts
// are whole Rwandan francs.
type PaymentRequest struct {
	Amount      int64   `json:"amount"`
	Method      Method  `json:"method"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	Purpose     Purpose `json:"purpose"`
}

// Payment is the backend-issued record for one initiated payment. The client
// only ever holds a read-only copy refreshed by polling.
type Payment struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Limits are the configured amount bounds applied before initiation.
type Limits struct {
	MinTopUpAmount int64
	MaxAmount      int64
}

func DefaultLimits() Limits {
	return Limits{
		MinTopUpAmount: 1000,
		MaxAmount:      5000000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MinTopUpAmount <= 0 {
		l.MinTopUpAmount = d.MinTopUpAmount
	}
	if l.MaxAmount <= 0 {
		l.MaxAmount = d.MaxAmount
	}
	return l
}

// Validate applies every submission precondition. A non-nil result means no
// network call may be made for this request.
func (r *PaymentRequest) Validate(rules ProviderRules, limits Limits) *errors.AppError {
	limits = limits.withDefaults()

	v := validation.NewValidator()

	v.Field("amount", r.Amount).
		Required().
		MinInt(1, errors.ErrCodeInvalidAmount).
		MaxInt(limits.MaxAmount, errors.ErrCodeAmountTooHigh)

	if r.Purpose.Type == PurposeTopUp {
		v.Field("amount", r.Amount).MinInt(limits.MinTopUpAmount, errors.ErrCodeAmountTooLow)
	}

	v.Field("method", string(r.Method)).
		Required().
		OneOf(errors.ErrCodeInvalidPaymentMethod,
			string(MethodMTNMoMo), string(MethodAirtelMoney), string(MethodWallet))

	v.Field("purpose_type", string(r.Purpose.Type)).
		Required().
		OneOf(errors.ErrCodeInvalidPurpose,
			string(PurposeTopUp), string(PurposeServicePayment), string(PurposeSubscription))

	v.Field("description", r.Purpose.Description).MaxLength(255)

	if r.Method.IsMobileMoney() {
		method := r.Method
		v.Field("phone_number", r.PhoneNumber).
			Required().
			Custom(func(value interface{}) *errors.AppError {
				raw, ok := value.(string)
				if !ok || raw == "" {
					return nil
				}
				if !ValidPhoneNumber(rules, method, raw) {
					return errors.NewValidationFieldError("phone_number",
						"phone number is not valid for the selected provider",
						errors.ErrCodeInvalidPhoneNumber)
				}
				return nil
			})
	}

	return v.Validate()
}
