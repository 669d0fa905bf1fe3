package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/pkg/logger"
)

// State of a payment session. input, failed and cancelled accept further
// operations; succeeded and failed are terminal for the attempt, with
// failed and cancelled retryable via Retry.
type State string

const (
	StateInput      State = "input"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// GatewayAPI is the slice of the payments backend a session needs. Initiate
// must be called exactly once per submission; GetStatus is polled until the
// payment settles or the attempt budget runs out.
type GatewayAPI interface {
	Initiate(ctx context.Context, req *PaymentRequest) (*Payment, error)
	GetStatus(ctx context.Context, paymentID string) (*Payment, error)
}

// Observer receives every payment refresh observed while polling, in
// chronological order, and is never called after the session reaches a
// terminal state.
type Observer func(p *Payment)

// WaitFunc is the injected delay between polls so tests can collapse time.
// It must return a non-nil error when ctx ends before the delay elapses.
type WaitFunc func(ctx context.Context, d time.Duration) error

func defaultWait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    3 * time.Second,
		MaxAttempts: 20,
	}
}

func (c PollConfig) withDefaults() PollConfig {
	d := DefaultPollConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	return c
}

// SessionConfig bundles the knobs a session inherits from service config.
// Zero values fall back to defaults.
type SessionConfig struct {
	Poll     PollConfig
	Rules    ProviderRules
	Limits   Limits
	Observer Observer
	Wait     WaitFunc
	Logger   *slog.Logger
}

// Session owns the lifecycle of a single payment attempt: input collection,
// submission, confirmation polling and terminal resolution. One session
// serves one attempt chain; after success a fresh session must be created.
type Session struct {
	ID string

	mu        sync.Mutex
	state     State
	request   PaymentRequest
	payment   *Payment
	lastErr   *errors.AppError
	cancelled bool
	cancelCh  chan struct{}

	gateway  GatewayAPI
	observer Observer
	wait     WaitFunc
	poll     PollConfig
	rules    ProviderRules
	limits   Limits
	log      *slog.Logger
}

func NewSession(req PaymentRequest, gateway GatewayAPI, cfg SessionConfig) *Session {
	if cfg.Wait == nil {
		cfg.Wait = defaultWait
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultProviderRules()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.LoggerWrapper()
	}

	id := uuid.NewString()
	return &Session{
		ID:       id,
		state:    StateInput,
		request:  req,
		cancelCh: make(chan struct{}),
		gateway:  gateway,
		observer: cfg.Observer,
		wait:     cfg.Wait,
		poll:     cfg.Poll.withDefaults(),
		rules:    cfg.Rules,
		limits:   cfg.Limits.withDefaults(),
		log:      cfg.Logger.With("session_id", id),
	}
}

// Snapshot is a consistent copy of the session's observable state.
type Snapshot struct {
	ID      string
	State   State
	Request PaymentRequest
	Payment *Payment
	Err     *errors.AppError
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:      s.ID,
		State:   s.state,
		Request: s.request,
		Err:     s.lastErr,
	}
	if s.payment != nil {
		p := *s.payment
		snap.Payment = &p
	}
	return snap
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetAmount, SetMethod and SetPhoneNumber mutate the collected input. They
// are only legal while the session is in the input state.

func (s *Session) SetAmount(amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return errors.ErrInvalidSessionState
	}
	s.request.Amount = amount
	return nil
}

// SetMethod switches the payment method. Swapping one mobile money provider
// for another discards the retained phone number since the prefix rules no
// longer apply.
func (s *Session) SetMethod(m Method) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return errors.ErrInvalidSessionState
	}
	if m != s.request.Method && m.IsMobileMoney() && s.request.Method.IsMobileMoney() {
		s.request.PhoneNumber = ""
	}
	s.request.Method = m
	return nil
}

func (s *Session) SetPhoneNumber(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return errors.ErrInvalidSessionState
	}
	s.request.PhoneNumber = phone
	return nil
}

// Submit validates the collected input, initiates the payment and blocks
// until the session reaches a terminal state or is cancelled. Validation
// failures keep the session in the input state and make no network call.
// Exactly one initiate call is issued per successful submission; a second
// Submit without an intervening Retry is rejected.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInput {
		s.mu.Unlock()
		return errors.ErrInvalidSessionState
	}
	if appErr := s.request.Validate(s.rules, s.limits); appErr != nil {
		s.lastErr = appErr
		s.mu.Unlock()
		return appErr
	}
	s.state = StateProcessing
	s.lastErr = nil
	req := s.request
	cancelCh := s.cancelCh
	s.mu.Unlock()

	// Tie the outbound calls to both the caller's context and Cancel.
	pollCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-cancelCh:
			stop()
		case <-pollCtx.Done():
		}
	}()

	s.log.Info("initiating payment",
		"amount", req.Amount,
		"method", req.Method,
		"purpose", req.Purpose.Type)

	pay, err := s.gateway.Initiate(pollCtx, &req)
	if err != nil {
		if s.isCancelled() {
			return errors.NewPaymentCancelledError()
		}
		s.log.Error("payment initiation failed", "error", err)
		return s.fail(errors.NewInitiationError(err))
	}

	if !s.cachePayment(pay) {
		return errors.NewPaymentCancelledError()
	}

	switch pay.Status {
	case StatusCompleted:
		return s.succeed()
	case StatusFailed:
		return s.fail(declinedError(pay))
	}

	if !req.Method.RequiresConfirmation() {
		// Synchronous method that still reported a non-terminal status;
		// fall through to polling rather than guessing the outcome.
		s.log.Warn("synchronous method returned non-terminal status",
			"payment_id", pay.ID, "status", pay.Status)
	}

	return s.pollUntilTerminal(pollCtx, pay.ID)
}

// pollUntilTerminal checks the payment status on a fixed interval until it
// settles, the attempt budget runs out or the session is cancelled. A
// network error on a single poll is transient unless it is the last
// attempt.
func (s *Session) pollUntilTerminal(ctx context.Context, paymentID string) error {
	for attempt := 1; attempt <= s.poll.MaxAttempts; attempt++ {
		if err := s.wait(ctx, s.poll.Interval); err != nil {
			if s.isCancelled() {
				s.log.Info("polling stopped by cancellation", "payment_id", paymentID, "attempt", attempt)
				return errors.NewPaymentCancelledError()
			}
			return s.fail(errors.NewPollingTimeoutError().WithCause(err))
		}

		pay, err := s.gateway.GetStatus(ctx, paymentID)
		if err != nil {
			if s.isCancelled() {
				return errors.NewPaymentCancelledError()
			}
			if attempt == s.poll.MaxAttempts {
				s.log.Error("final status poll failed", "payment_id", paymentID, "error", err)
				return s.fail(errors.NewPollingTimeoutError().WithCause(err))
			}
			s.log.Warn("status poll failed, will retry",
				"payment_id", paymentID,
				"attempt", attempt,
				"error", err)
			continue
		}

		if !s.storePayment(pay) {
			return errors.NewPaymentCancelledError()
		}

		switch pay.Status {
		case StatusCompleted:
			s.log.Info("payment confirmed", "payment_id", paymentID, "attempts", attempt)
			return s.succeed()
		case StatusFailed:
			s.log.Info("payment declined", "payment_id", paymentID, "attempts", attempt)
			return s.fail(declinedError(pay))
		}
	}

	s.log.Warn("poll budget exhausted", "payment_id", paymentID, "attempts", s.poll.MaxAttempts)
	return s.fail(errors.NewPollingTimeoutError())
}

// Cancel stops any pending poll and suppresses further polling. It is a
// no-op once the session has settled. The initiate call, once issued, is
// not recalled; the backend may still settle the payment on its side.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSucceeded, StateFailed, StateCancelled:
		return
	}

	if !s.cancelled {
		s.cancelled = true
		close(s.cancelCh)
	}
	s.state = StateCancelled
	s.lastErr = errors.NewPaymentCancelledError()
}

// Retry returns a failed or cancelled session to the input state for a new
// submission. The cached payment and error are discarded; amount, method
// and phone number are retained.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateFailed, StateCancelled:
	default:
		return errors.ErrInvalidSessionState
	}

	s.state = StateInput
	s.payment = nil
	s.lastErr = nil
	s.cancelled = false
	s.cancelCh = make(chan struct{})
	return nil
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// cachePayment records the initiate response without notifying the
// observer, which only sees updates observed while polling. It reports
// false when the session left the processing state in the meantime.
func (s *Session) cachePayment(p *Payment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		return false
	}
	s.payment = p
	return true
}

// storePayment refreshes the cached payment and notifies the observer.
// It reports false when the session left the processing state underneath
// the poll loop, in which case the update is discarded.
func (s *Session) storePayment(p *Payment) bool {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return false
	}
	s.payment = p
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(p)
	}
	return true
}

func (s *Session) succeed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		return errors.NewPaymentCancelledError()
	}
	s.state = StateSucceeded
	return nil
}

func (s *Session) fail(appErr *errors.AppError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		return errors.NewPaymentCancelledError()
	}
	s.state = StateFailed
	s.lastErr = appErr
	return appErr
}

func declinedError(p *Payment) *errors.AppError {
	reason := ""
	if p.FailureReason != nil {
		reason = *p.FailureReason
	}
	return errors.NewPaymentDeclinedError(reason)
}
