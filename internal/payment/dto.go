package payment

import "time"

// StartPaymentRequest is the JSON payload for POST /payments.
type StartPaymentRequest struct {
	Amount      int64      `json:"amount"`
	Method      string     `json:"method"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Purpose     PurposeDTO `json:"purpose"`
}

type PurposeDTO struct {
	Type        string `json:"type"`
	EntityID    string `json:"entity_id,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r *StartPaymentRequest) ToDomain() PaymentRequest {
	return PaymentRequest{
		Amount:      r.Amount,
		Method:      Method(r.Method),
		PhoneNumber: r.PhoneNumber,
		Purpose: Purpose{
			Type:        PurposeType(r.Purpose.Type),
			EntityID:    r.Purpose.EntityID,
			Description: r.Purpose.Description,
		},
	}
}

// SessionView is what clients poll to render the payment screen.
type SessionView struct {
	SessionID string       `json:"session_id"`
	State     string       `json:"state"`
	Amount    int64        `json:"amount"`
	Method    string       `json:"method"`
	Purpose   PurposeDTO   `json:"purpose"`
	Payment   *PaymentView `json:"payment,omitempty"`
	Error     *ErrorView   `json:"error,omitempty"`
}

type PaymentView struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ToView(s *Session) SessionView {
	snap := s.Snapshot()

	view := SessionView{
		SessionID: snap.ID,
		State:     string(snap.State),
		Amount:    snap.Request.Amount,
		Method:    string(snap.Request.Method),
		Purpose: PurposeDTO{
			Type:        string(snap.Request.Purpose.Type),
			EntityID:    snap.Request.Purpose.EntityID,
			Description: snap.Request.Purpose.Description,
		},
	}

	if snap.Payment != nil {
		pv := PaymentView{
			ID:        snap.Payment.ID,
			Status:    string(snap.Payment.Status),
			CreatedAt: snap.Payment.CreatedAt,
			UpdatedAt: snap.Payment.UpdatedAt,
		}
		if snap.Payment.FailureReason != nil {
			pv.FailureReason = *snap.Payment.FailureReason
		}
		view.Payment = &pv
	}

	if snap.Err != nil {
		view.Error = &ErrorView{
			Code:    string(snap.Err.Code),
			Message: snap.Err.GetDetailedMessage(),
		}
	}

	return view
}
