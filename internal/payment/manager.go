package payment

import (
	"context"
	"log/slog"
	"sync"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/core/events"
)

// SessionManager holds the live payment sessions for this process and runs
// their submissions in the background. Sessions are in-memory only; they
// disappear when destroyed or when the process exits, mirroring a client
// screen lifecycle.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gateway GatewayAPI
	bus     *events.EventBus
	cfg     SessionConfig
	logger  *slog.Logger
}

func NewSessionManager(gateway GatewayAPI, bus *events.EventBus, cfg SessionConfig, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		gateway:  gateway,
		bus:      bus,
		cfg:      cfg,
		logger:   logger,
	}
}

// StartPayment validates the request, registers a new session and submits
// it on a background goroutine. Validation failures are returned
// synchronously and create no session.
func (m *SessionManager) StartPayment(req PaymentRequest) (*Session, error) {
	rules := m.cfg.Rules
	if rules == nil {
		rules = DefaultProviderRules()
	}
	if appErr := req.Validate(rules, m.cfg.Limits); appErr != nil {
		m.logger.Warn("payment request rejected", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	sess := NewSession(req, m.gateway, m.cfg)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Info("payment session created",
		"session_id", sess.ID,
		"amount", req.Amount,
		"method", req.Method,
		"purpose", req.Purpose.Type)

	go m.run(sess)
	return sess, nil
}

func (m *SessionManager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return sess, nil
}

// Retry resets a failed or cancelled session and resubmits it in the
// background.
func (m *SessionManager) Retry(sessionID string) (*Session, error) {
	sess, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Retry(); err != nil {
		return nil, err
	}

	m.logger.Info("payment session retrying", "session_id", sess.ID)
	go m.run(sess)
	return sess, nil
}

func (m *SessionManager) Cancel(sessionID string) (*Session, error) {
	sess, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Cancel()
	return sess, nil
}

// Destroy cancels any in-flight polling and forgets the session, the
// equivalent of the paying screen unmounting.
func (m *SessionManager) Destroy(sessionID string) error {
	sess, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Cancel()

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	m.logger.Info("payment session destroyed", "session_id", sessionID)
	return nil
}

// run drives one submission to its terminal state and publishes the
// outcome. The background context deliberately detaches the poll loop from
// the originating HTTP request: an initiated payment keeps confirming even
// if the client disconnects.
func (m *SessionManager) run(sess *Session) {
	err := sess.Submit(context.Background())
	snap := sess.Snapshot()

	paymentID := ""
	if snap.Payment != nil {
		paymentID = snap.Payment.ID
	}

	switch snap.State {
	case StateSucceeded:
		m.publish(events.NewPaymentSucceededEvent(
			snap.ID, paymentID, snap.Request.Amount,
			string(snap.Request.Method), string(snap.Request.Purpose.Type)))
	case StateFailed:
		reason := ""
		if snap.Err != nil {
			reason = snap.Err.Error()
		}
		m.publish(events.NewPaymentFailedEvent(
			snap.ID, paymentID, snap.Request.Amount,
			string(snap.Request.Method), string(snap.Request.Purpose.Type), reason))
	case StateCancelled:
		m.publish(events.NewPaymentCancelledEvent(
			snap.ID, paymentID, snap.Request.Amount, string(snap.Request.Method)))
	default:
		if err != nil {
			m.logger.Error("payment submission ended in unexpected state",
				"session_id", snap.ID, "state", snap.State, "error", err)
		}
	}
}

func (m *SessionManager) publish(event events.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(context.Background(), event); err != nil {
		m.logger.Error("failed to publish payment event",
			"event_type", event.EventType(), "error", err)
	}
}
