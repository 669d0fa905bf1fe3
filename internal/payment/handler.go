package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/transport"
)

// SessionManagerAPI is the slice of the manager the HTTP layer uses.
type SessionManagerAPI interface {
	StartPayment(req PaymentRequest) (*Session, error)
	Get(sessionID string) (*Session, error)
	Retry(sessionID string) (*Session, error)
	Cancel(sessionID string) (*Session, error)
	Destroy(sessionID string) error
}

type Handler struct {
	transport.BaseHandler
	Manager SessionManagerAPI
	Logger  *slog.Logger
}

func NewHandler(manager SessionManagerAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		Manager:     manager,
		Logger:      logger,
	}
}

// StartPayment handles POST /api/v1/payments
func (h *Handler) StartPayment(w http.ResponseWriter, r *http.Request) {
	var req StartPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("StartPayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	sess, err := h.Manager.StartPayment(req.ToDomain())
	if err != nil {
		h.Logger.Warn("StartPayment: rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("StartPayment: session started",
		"session_id", sess.ID,
		"amount", req.Amount,
		"method", req.Method)

	h.WriteJSON(w, http.StatusAccepted, ToView(sess))
}

// GetSession handles GET /api/v1/payments/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Manager.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToView(sess))
}

// RetrySession handles POST /api/v1/payments/{sessionID}/retry
func (h *Handler) RetrySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.Manager.Retry(sessionID)
	if err != nil {
		h.Logger.Warn("RetrySession: rejected", "session_id", sessionID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RetrySession: retry started", "session_id", sessionID)
	h.WriteJSON(w, http.StatusAccepted, ToView(sess))
}

// CancelSession handles POST /api/v1/payments/{sessionID}/cancel
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.Manager.Cancel(sessionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CancelSession: cancelled", "session_id", sessionID)
	h.WriteJSON(w, http.StatusOK, ToView(sess))
}

// DestroySession handles DELETE /api/v1/payments/{sessionID}
func (h *Handler) DestroySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.Manager.Destroy(sessionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DestroySession: destroyed", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
