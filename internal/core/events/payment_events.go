package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentCancelled = "payment.cancelled"
)

type PaymentSucceededEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Purpose   string `json:"purpose"`
}

func NewPaymentSucceededEvent(sessionID, paymentID string, amount int64, method, purpose string) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id": sessionID,
				"payment_id": paymentID,
				"amount":     amount,
				"method":     method,
				"purpose":    purpose,
			},
		},
		SessionID: sessionID,
		PaymentID: paymentID,
		Amount:    amount,
		Method:    method,
		Purpose:   purpose,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	SessionID     string `json:"session_id"`
	PaymentID     string `json:"payment_id"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	Purpose       string `json:"purpose"`
	FailureReason string `json:"failure_reason"`
}

func NewPaymentFailedEvent(sessionID, paymentID string, amount int64, method, purpose, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id":     sessionID,
				"payment_id":     paymentID,
				"amount":         amount,
				"method":         method,
				"purpose":        purpose,
				"failure_reason": failureReason,
			},
		},
		SessionID:     sessionID,
		PaymentID:     paymentID,
		Amount:        amount,
		Method:        method,
		Purpose:       purpose,
		FailureReason: failureReason,
	}
}

type PaymentCancelledEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
}

func NewPaymentCancelledEvent(sessionID, paymentID string, amount int64, method string) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCancelled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id": sessionID,
				"payment_id": paymentID,
				"amount":     amount,
				"method":     method,
			},
		},
		SessionID: sessionID,
		PaymentID: paymentID,
		Amount:    amount,
		Method:    method,
	}
}
